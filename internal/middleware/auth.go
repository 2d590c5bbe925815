package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"marketplace/internal/model"
	"marketplace/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// extractToken pulls the JWT from the access_token cookie, falling back to the
// Authorization header
func extractToken(c *gin.Context) (string, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RequireRole validates the JWT token and checks if the user's role exists in the allowedRoles list
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		userRole, ok := claims["role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}

		roleAllowed := false
		for _, role := range allowedRoles {
			if userRole == role {
				roleAllowed = true
				break
			}
		}

		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set("userID", claims["sub"])
		c.Set("userRole", userRole)

		c.Next()
	}
}

// --- Shop ownership middleware ---

// ownerCacheEntry stores the cached owner id of a shop with TTL
type ownerCacheEntry struct {
	ownerID   string
	expiresAt time.Time
}

var (
	ownerCache    sync.Map // shopID (int64) -> ownerCacheEntry
	ownerCacheTTL = 5 * time.Minute
)

// ownerDB holds the database reference for ownership queries — set via InitShopAccessMiddleware
var ownerDB *gorm.DB

// InitShopAccessMiddleware sets the DB reference for RequireShopOwner middleware
func InitShopAccessMiddleware(db *gorm.DB) {
	ownerDB = db
}

// RequireShopOwner validates the JWT and checks that the caller owns the shop
// named by the :shopID path param. Superadmins always pass.
func RequireShopOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		claims, err := parseClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		userRole, _ := claims["role"].(string)
		userID, _ := claims["sub"].(string)
		c.Set("userID", userID)
		c.Set("userRole", userRole)

		if userRole == model.RoleSuperadmin {
			c.Next()
			return
		}

		if userRole != model.RoleMerchant {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		shopID, err := strconv.ParseInt(c.Param("shopID"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid shop id"))
			return
		}

		ownerID, err := getShopOwner(shopID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify shop ownership"))
			return
		}

		if ownerID == "" || ownerID != userID {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: not the shop owner"))
			return
		}

		c.Next()
	}
}

// getShopOwner returns the cached or DB-fetched owner id of a shop
func getShopOwner(shopID int64) (string, error) {
	if entry, ok := ownerCache.Load(shopID); ok {
		cached := entry.(ownerCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.ownerID, nil
		}
	}

	if ownerDB == nil {
		return "", fmt.Errorf("shop access middleware not initialized")
	}

	var ownerID *string
	err := ownerDB.Raw(`
		SELECT owner_id FROM shops
		WHERE shop_id = ? AND deleted_at IS NULL
	`, shopID).Scan(&ownerID).Error
	if err != nil {
		return "", err
	}

	resolved := ""
	if ownerID != nil {
		resolved = *ownerID
	}

	ownerCache.Store(shopID, ownerCacheEntry{
		ownerID:   resolved,
		expiresAt: time.Now().Add(ownerCacheTTL),
	})

	return resolved, nil
}

// ClearShopOwnerCache removes the cached owner for a shop (or all shops if zero)
func ClearShopOwnerCache(shopID int64) {
	if shopID == 0 {
		ownerCache.Range(func(key, _ interface{}) bool {
			ownerCache.Delete(key)
			return true
		})
	} else {
		ownerCache.Delete(shopID)
	}
}
