package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"classku_backend/internals/configs"
	authDTO "classku_backend/internals/features/users/auth/dto"
	authModel "classku_backend/internals/features/users/auth/model"
	userModel "classku_backend/internals/features/users/user/model"
	helper "classku_backend/internals/helpers"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

func nowUTC() time.Time { return time.Now().UTC() }

// ========================== REGISTER ==========================
func Register(db *gorm.DB, c *fiber.Ctx) error {
	var body authDTO.RegisterRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	if err := validate.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	user := userModel.UserModel{
		UserName: body.UserName,
		Email:    body.Email,
		Password: string(hashed),
	}
	user.SetDefaultValues()

	if err := db.WithContext(c.Context()).Create(&user).Error; err != nil {
		if helper.IsDuplicateKey(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Email is already registered")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonCreated(c, "Account created", authDTO.LoginUser{
		ID:       user.ID.String(),
		UserName: user.UserName,
		Email:    user.Email,
		Role:     user.Role,
	})
}

// ========================== LOGIN ==========================
func Login(db *gorm.DB, c *fiber.Ctx) error {
	var body authDTO.LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	if err := validate.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var user userModel.UserModel
	if err := db.WithContext(c.Context()).Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid email or password")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid email or password")
	}
	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Your account has been deactivated")
	}

	return issueTokens(db, c, &user, "Login successful")
}

// ========================== GOOGLE LOGIN ==========================
// Verifies the Google ID token, then finds or creates the matching account.
// The external subject id is stored opaque; we never touch Google credentials.
func LoginGoogle(db *gorm.DB, c *fiber.Ctx) error {
	var body authDTO.GoogleLoginRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if err := validate.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(body.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid Google token")
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(body.IDToken)
	if err != nil || claimSet.Email == "" {
		return helper.JsonError(c, fiber.StatusBadGateway, "Failed to read Google token claims")
	}

	email := strings.ToLower(claimSet.Email)
	sub := claimSet.Sub

	var user userModel.UserModel
	err = db.WithContext(c.Context()).Where("google_id = ? OR email = ?", sub, email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first Google sign-in: create the account with a random password
		randomPwd, _ := bcrypt.GenerateFromPassword([]byte(randomToken()), bcrypt.DefaultCost)
		name := claimSet.Name
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		user = userModel.UserModel{
			UserName: name,
			Email:    email,
			Password: string(randomPwd),
			GoogleID: &sub,
		}
		user.SetDefaultValues()
		if err := db.WithContext(c.Context()).Create(&user).Error; err != nil {
			if helper.IsDuplicateKey(err) {
				return helper.JsonError(c, fiber.StatusConflict, "Account already exists")
			}
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	default:
		if user.GoogleID == nil {
			_ = db.WithContext(c.Context()).Model(&user).Update("google_id", sub).Error
		}
	}

	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Your account has been deactivated")
	}
	return issueTokens(db, c, &user, "Login successful")
}

// ========================== REFRESH ==========================
func RefreshToken(db *gorm.DB, c *fiber.Ctx) error {
	var body authDTO.RefreshRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request format")
	}
	if err := validate.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	hash := computeRefreshHash(body.RefreshToken, configs.JWTRefreshSecret)

	var rt authModel.RefreshTokenModel
	err := db.WithContext(c.Context()).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, nowUTC()).
		First(&rt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid or expired refresh token")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var user userModel.UserModel
	if err := db.WithContext(c.Context()).First(&user, "id = ?", rt.UserID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "User not found")
	}
	if !user.IsActive {
		return helper.JsonError(c, fiber.StatusForbidden, "Your account has been deactivated")
	}

	// rotate: revoke the old row, issue a fresh pair
	now := nowUTC()
	if err := db.WithContext(c.Context()).Model(&rt).Update("revoked_at", &now).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return issueTokens(db, c, &user, "Token refreshed")
}

// ========================== LOGOUT ==========================
func Logout(db *gorm.DB, c *fiber.Ctx) error {
	authHeader := strings.TrimSpace(c.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return helper.JsonError(c, fiber.StatusBadRequest, "Missing bearer token")
	}
	token := parts[1]

	entry := authModel.TokenBlacklistModel{
		Token:     token,
		ExpiredAt: nowUTC().Add(accessTokenTTL),
	}
	if err := db.WithContext(c.Context()).Create(&entry).Error; err != nil && !helper.IsDuplicateKey(err) {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "Logged out", nil)
}

/* ===============================
   Token plumbing
=================================*/

func issueTokens(db *gorm.DB, c *fiber.Ctx, user *userModel.UserModel, message string) error {
	access, err := buildAccessToken(user)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to sign token")
	}

	refresh := randomToken()
	ua := c.Get("User-Agent")
	ip := c.IP()
	rt := authModel.RefreshTokenModel{
		UserID:    user.ID,
		TokenHash: computeRefreshHash(refresh, configs.JWTRefreshSecret),
		ExpiresAt: nowUTC().Add(refreshTokenTTL),
		UserAgent: &ua,
		IP:        &ip,
	}
	if err := db.WithContext(c.Context()).Create(&rt).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, message, authDTO.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User: authDTO.LoginUser{
			ID:       user.ID.String(),
			UserName: user.UserName,
			Email:    user.Email,
			Role:     user.Role,
			Avatar:   user.AvatarURL,
		},
	})
}

func buildAccessToken(user *userModel.UserModel) (string, error) {
	now := nowUTC()
	claims := jwt.MapClaims{
		"id":   user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTSecret))
}

func computeRefreshHash(token, secret string) []byte {
	sum := sha256.Sum256([]byte(token + "." + secret))
	return sum[:]
}

func randomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}
