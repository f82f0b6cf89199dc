package controllers

import (
	"io"
	"net/http"

	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/kopisahaja/kopisahaja/config"
	"github.com/kopisahaja/kopisahaja/pkg/ctx"
	"github.com/kopisahaja/kopisahaja/pkg/middleware"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (a *AuthController) Register(c *ctx.Context) {
	var input services.RegisterInput
	if !c.BindJSON(&input) {
		return
	}

	result, err := a.service.Register(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Created(result)
}

func (a *AuthController) Login(c *ctx.Context) {
	var input struct {
		Email    string `json:"email"    validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if !c.BindJSON(&input) {
		return
	}

	result, err := a.service.Login(input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(result)
}

func (a *AuthController) Google(c *ctx.Context) {
	var input struct {
		Credential string `json:"credential" validate:"required"`
	}
	if !c.BindJSON(&input) {
		return
	}

	result, err := a.service.GoogleSignIn(c.Context(), input.Credential)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(result)
}

func (a *AuthController) Profile(c *ctx.Context) {
	user, err := a.service.Profile(middleware.UserIDFromCtx(c.Context()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(user)
}

func (a *AuthController) UpdateProfile(c *ctx.Context) {
	var input services.ProfileInput
	if !c.BindJSON(&input) {
		return
	}

	user, err := a.service.UpdateProfile(middleware.UserIDFromCtx(c.Context()), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(user)
}

func (a *AuthController) UploadPicture(c *ctx.Context) {
	// Cap the whole multipart body slightly above the picture limit so the
	// size error comes from the service, not an opaque read failure.
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, services.MaxPictureBytes+1024)

	file, header, err := c.R.FormFile("picture")
	if err != nil {
		c.Error(http.StatusBadRequest, "A picture file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.Error(http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	user, err := a.service.UploadPicture(middleware.UserIDFromCtx(c.Context()), header.Filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(user)
}

func (a *AuthController) ForgotPassword(c *ctx.Context) {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if !c.BindJSON(&input) {
		return
	}

	token, err := a.service.ForgotPassword(input.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	// The token itself is only exposed in debug builds; production users
	// get it by email.
	payload := map[string]any{"message": "If the email is registered, a reset link has been sent."}
	if config.AppDebug() && token != "" {
		payload["token"] = token
	}
	c.Success(payload)
}

func (a *AuthController) ResetPassword(c *ctx.Context) {
	var input struct {
		Token       string `json:"token"       validate:"required,size=64"`
		NewPassword string `json:"newPassword" validate:"required,min=6,max=100"`
	}
	if !c.BindJSON(&input) {
		return
	}

	if err := a.service.ResetPassword(input.Token, input.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Success(map[string]string{"message": "Password has been reset."})
}
