package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	dto "classku_backend/internals/features/users/user/dto"
	model "classku_backend/internals/features/users/user/model"
	helper "classku_backend/internals/helpers"
	ossHelper "classku_backend/internals/helpers/oss"
)

type UserController struct {
	DB        *gorm.DB
	Validator *validator.Validate
	OSS       *ossHelper.OSSService
}

func NewUserController(db *gorm.DB) *UserController {
	svc, err := ossHelper.NewOSSServiceFromEnv("avatars")
	if err != nil {
		// avatar upload is optional; keep the rest of the profile working
		log.Printf("[WARN] OSS unavailable, avatar upload disabled: %v", err)
	}
	return &UserController{
		DB:        db,
		Validator: validator.New(),
		OSS:       svc,
	}
}

// GET /me
func (ctrl *UserController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var user model.UserModel
	if err := ctrl.DB.WithContext(c.Context()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "User not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", dto.FromModel(&user))
}

// PATCH /me
func (ctrl *UserController) UpdateMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}

	var body dto.UpdateProfileRequest
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	if err := ctrl.Validator.Struct(&body); err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	updates := map[string]any{}
	if body.UserName != nil {
		updates["user_name"] = *body.UserName
	}
	if body.Bio != nil {
		updates["bio"] = *body.Bio
	}
	if len(updates) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Nothing to update")
	}

	var user model.UserModel
	if err := ctrl.DB.WithContext(c.Context()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "User not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	if err := ctrl.DB.WithContext(c.Context()).Model(&user).Updates(updates).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Profile updated", dto.FromModel(&user))
}

// POST /me/avatar (multipart, field "avatar")
func (ctrl *UserController) UploadAvatar(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Missing user context")
	}
	if ctrl.OSS == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "File storage is not configured")
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Missing avatar file")
	}
	if fh.Size > 5*1024*1024 {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "Avatar too large (max 5MB)")
	}

	url, err := ctrl.OSS.UploadImageAsWebP(c.UserContext(), userID.String(), fh, 512, 80)
	if err != nil {
		if errors.Is(err, ossHelper.ErrUnsupportedImage) {
			return helper.JsonError(c, fiber.StatusUnsupportedMediaType, err.Error())
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	if err := ctrl.DB.WithContext(c.Context()).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("avatar_url", url).Error; err != nil {
		// metadata write failed: remove the fresh blob so nothing is orphaned
		if key, kerr := keyFromURL(ctrl.OSS, url); kerr == nil {
			_ = ctrl.OSS.DeleteObject(c.UserContext(), key)
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonUpdated(c, "Avatar updated", fiber.Map{"avatar_url": url})
}

func keyFromURL(svc *ossHelper.OSSService, url string) (string, error) {
	prefix := svc.PublicURL("")
	if len(url) <= len(prefix) {
		return "", errors.New("not an OSS public URL")
	}
	return url[len(prefix):], nil
}
