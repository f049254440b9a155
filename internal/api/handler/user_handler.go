package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clipstream/accounts-api/internal/api/metrics"
	"github.com/clipstream/accounts-api/internal/core/domain"
	"github.com/clipstream/accounts-api/internal/core/ports"
)

// UserHandler exposes registration and profile mutation endpoints.
type UserHandler struct {
	profiles ports.ProfileService
}

func NewUserHandler(profiles ports.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// Register creates a new account from a multipart form carrying the text
// fields plus an avatar file and an optional cover image.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName    formData  string  true   "Display name"
// @Param        username    formData  string  true   "Unique username, stored lowercase"
// @Param        email       formData  string  true   "Unique email"
// @Param        password    formData  string  true   "Password"
// @Param        avatar      formData  file    true   "Avatar image"
// @Param        coverImage  formData  file    false  "Cover image"
// @Success      201  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Failure      409  {object}  apiResponse
// @Failure      500  {object}  apiResponse
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	input := ports.RegisterInput{
		FullName: c.FormValue("fullName"),
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
	}

	avatar, closeAvatar, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	defer closeAvatar()
	input.Avatar = avatar

	cover, closeCover, err := formFile(c, "coverImage")
	if err != nil {
		return err
	}
	defer closeCover()
	input.CoverImage = cover

	user, err := h.profiles.Register(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	return respond(c, http.StatusCreated, userResponse{User: user}, "user registered successfully")
}

// CurrentUser returns the identity the auth middleware attached to the
// request; no additional store access happens here.
//
// @Summary      Get the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /api/v1/users/current-user [get]
func (h *UserHandler) CurrentUser(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, userResponse{User: user}, "current user fetched")
}

// UpdateProfile patches the optional profile fields; whichever of fullName
// and email is present is applied, the rest is left untouched.
//
// @Summary      Update profile fields
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Router       /api/v1/users/update-account [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.profiles.UpdateProfile(c.Request().Context(), user.ID, ports.UpdateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, userResponse{User: updated}, "account details updated")
}

// UpdateAvatar replaces the stored avatar reference with a freshly uploaded
// image.
//
// @Summary      Update the avatar image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "New avatar image"
// @Success      200  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Failure      500  {object}  apiResponse
// @Router       /api/v1/users/avatar [patch]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.updateImage(c, "avatar", ports.MediaAvatar, h.profiles.UpdateAvatar)
}

// UpdateCoverImage replaces the stored cover-image reference.
//
// @Summary      Update the cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        coverImage  formData  file  true  "New cover image"
// @Success      200  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Failure      500  {object}  apiResponse
// @Router       /api/v1/users/cover-image [patch]
func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	return h.updateImage(c, "coverImage", ports.MediaCover, h.profiles.UpdateCoverImage)
}

// updateImage is the shared flow for both image endpoints: read the file,
// time the end-to-end replacement, render the updated user.
func (h *UserHandler) updateImage(c echo.Context, field string, kind ports.MediaKind,
	apply func(ctx context.Context, userID string, file *ports.FileUpload) (*domain.User, error)) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	file, closeFile, err := formFile(c, field)
	if err != nil {
		return err
	}
	defer closeFile()

	start := time.Now()
	updated, err := apply(c.Request().Context(), user.ID, file)
	if err != nil {
		return err
	}
	metrics.MediaUploadDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	message := "avatar updated successfully"
	if kind == ports.MediaCover {
		message = "cover image updated successfully"
	}
	return respond(c, http.StatusOK, userResponse{User: updated}, message)
}

// formFile opens the named multipart file. A missing field is not an error
// here; the service decides whether the file is mandatory.
func formFile(c echo.Context, field string) (*ports.FileUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*ports.FileUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "invalid file upload")
	}
	upload := &ports.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	}
	return upload, func() { _ = f.Close() }, nil
}
