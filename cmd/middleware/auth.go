// cmd/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"strings"

	"github.com/coreos/go-oidc"
	"github.com/gin-gonic/gin"
)

var verifier *oidc.IDTokenVerifier

func InitAuth(issuerURL string) error {
	provider, err := oidc.NewProvider(context.Background(), issuerURL)
	if err != nil {
		return err
	}
	verifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	log.Printf("OIDC verifier initialized (SkipClientIDCheck: true)")
	return nil
}

// RequireAuth verifies the session token and stores the caller's
// identity in the request context. An invalid or expired token is the
// same answer for the client either way: reauthenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "reauthenticate"})
			return
		}

		tokenStr := strings.TrimPrefix(auth, "Bearer ")
		if tokenStr == auth {
			c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "invalid authorization format"})
			return
		}

		idToken, err := verifier.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			log.Printf("[AUTH] VERIFY FAILED: %v", err)
			c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "reauthenticate"})
			return
		}

		var claims struct {
			Sub               string `json:"sub"`
			Name              string `json:"name"`
			PreferredUsername string `json:"preferred_username"`
		}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(401, gin.H{"success": false, "message": "claim parse failed"})
			return
		}

		c.Set("user_id", claims.Sub)
		c.Set("user_name", claims.Name)
		// preferred_username carries the caller's PRN in this realm
		c.Set("user_prn", claims.PreferredUsername)
		c.Next()
	}
}
