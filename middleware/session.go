package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/fawazzo/lezzet-kapim/models"
)

const (
	IdentityContextKey = "identity"
	TokenContextKey    = "authToken"

	cartSessionHeader   = "X-Cart-Session"
	cartSessionCookie   = "cart_session"
	shopperIDContextKey = "cartShopperID"

	guestSessionMaxAge = 7 * 24 * 3600 // matches the cart TTL default
)

// SessionMiddleware resolves the acting identity from the marketplace's
// bearer token. Guests pass through unauthenticated; role gates live in
// the cart and checkout cores, not here.
func SessionMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			if identity, err := parseIdentity(tokenStr, jwtSecret); err == nil {
				c.Set(IdentityContextKey, identity)
				c.Set(TokenContextKey, tokenStr)
			}
		}
		c.Next()
	}
}

func parseIdentity(tokenStr, secret string) (*models.Identity, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	identity := &models.Identity{
		ID:              claimString(claims, "id"),
		Role:            claimString(claims, "role"),
		Name:            claimString(claims, "name"),
		FullAddress:     claimString(claims, "full_address"),
		District:        claimString(claims, "district"),
		Province:        claimString(claims, "province"),
		DeliveryBalance: claimFloat(claims, "delivery_balance"),
	}
	if identity.ID == "" {
		identity.ID = claimString(claims, "sub")
	}
	if identity.ID == "" || identity.Role == "" {
		return nil, fmt.Errorf("token missing identity claims")
	}
	return identity, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimFloat(claims jwt.MapClaims, key string) float64 {
	if v, ok := claims[key].(float64); ok {
		return v
	}
	return 0
}

// Identity returns the authenticated identity, or nil for guests.
func Identity(c *gin.Context) *models.Identity {
	if val, ok := c.Get(IdentityContextKey); ok {
		if identity, ok := val.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}

// Token returns the raw bearer token for forwarding upstream.
func Token(c *gin.Context) string {
	if val, ok := c.Get(TokenContextKey); ok {
		if token, ok := val.(string); ok {
			return token
		}
	}
	return ""
}

// ShopperID keys the cart slot: the account id when logged in,
// otherwise a stable guest session id minted into a cookie so the cart
// survives reloads. The resolved id is cached on the request context,
// so every call within one request keys the same shopper.
func ShopperID(c *gin.Context) string {
	if identity := Identity(c); identity != nil {
		return identity.ID
	}
	if v, ok := c.Get(shopperIDContextKey); ok {
		if sid, ok := v.(string); ok {
			return sid
		}
	}

	sid := c.GetHeader(cartSessionHeader)
	if sid == "" {
		if v, err := c.Cookie(cartSessionCookie); err == nil {
			sid = v
		}
	}
	if sid == "" {
		sid = uuid.NewString()
		c.SetCookie(cartSessionCookie, sid, guestSessionMaxAge, "/", "", false, true)
	}
	c.Set(shopperIDContextKey, sid)
	return sid
}
