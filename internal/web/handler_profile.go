// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/taibuivan/yomira-id/internal/authclient"
	"github.com/taibuivan/yomira-id/internal/platform/constants"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
	"github.com/taibuivan/yomira-id/internal/users/account"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

const (
	// maxFormBytes bounds plain form bodies.
	maxFormBytes = 64 << 10

	// maxUploadBytes leaves room for the multipart framing around an avatar.
	maxUploadBytes = account.MaxAvatarBytes + 512<<10

	messageProfileUpdated  = "Profile updated successfully."
	messageProfileFailed   = "An error occurred while updating the profile."
	messageEmailRequested  = "Verification email sent to your current address"
	messageEmailFailed     = "Failed to initiate email change"
	messagePasswordChanged = "Password changed successfully."
	messagePasswordFailed  = "Failed to change password"
)

var errImageTooLarge = errors.New("image too large")

// # Pages

func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	user := handler.currentSession(request).User
	render(writer, request, http.StatusOK, dashboardView(user))
}

func (handler *Handler) profilePage(writer http.ResponseWriter, request *http.Request) {
	user := handler.currentSession(request).User
	render(writer, request, http.StatusOK, profileView(user, defaultProfileForms(user)))
}

// defaultProfileForms pre-fills the profile forms from user.
func defaultProfileForms(user *auth.User) ProfileForms {
	return ProfileForms{
		Details:  NewForm(map[string]string{FieldName: user.Name}),
		Email:    NewForm(map[string]string{FieldNewEmail: user.Email}),
		Password: NewForm(nil),
	}
}

// # Profile Details

func (handler *Handler) updateDetails(writer http.ResponseWriter, request *http.Request) {
	user := handler.currentSession(request).User
	forms := defaultProfileForms(user)

	request.Body = http.MaxBytesReader(writer, request.Body, maxUploadBytes)
	if err := request.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		forms.Details.Begin()
		forms.Details.Errors[FieldImage] = "Image must be at most 2 MB"
		render(writer, request, http.StatusRequestEntityTooLarge, profileView(user, forms))
		return
	}

	form := FormFromValues(request.PostForm, FieldName, FieldRemoveImage)
	form.Begin()
	forms.Details = form

	image, err := readImage(request)
	switch {
	case errors.Is(err, errImageTooLarge):
		form.Errors[FieldImage] = "Image must be at most 2 MB"
	case err != nil:
		form.Errors[FieldImage] = "Image could not be read"
	}

	if ValidateProfileDetails(form) != nil || form.Invalid() {
		render(writer, request, http.StatusUnprocessableEntity, profileView(user, forms))
		return
	}

	updated, err := handler.client.UpdateUser(request.Context(), requestutil.SessionToken(request), authclient.UpdateUserInput{
		Name:        auth.NormalizeName(form.Get(FieldName)),
		Image:       image,
		RemoveImage: image == nil && form.Checked(FieldRemoveImage),
	})
	if err != nil {
		form.Fail(err, messageProfileFailed)
		render(writer, request, failureStatus(err), profileView(user, forms))
		return
	}

	// Re-render with the saved profile.
	forms = defaultProfileForms(updated)
	forms.Details.Succeed(messageProfileUpdated, false)
	forms.Details.Values[FieldName] = updated.Name
	render(writer, request, http.StatusOK, profileView(updated, forms))
}

// readImage returns the uploaded avatar as a data URL, or nil when no file was chosen.
func readImage(request *http.Request) (*string, error) {
	file, header, err := request.FormFile(FieldImage)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if header.Size > account.MaxAvatarBytes {
		return nil, errImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, account.MaxAvatarBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > account.MaxAvatarBytes {
		return nil, errImageTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}

	contentType, _, _ := strings.Cut(http.DetectContentType(data), ";")
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return &dataURL, nil
}

// # Email

func (handler *Handler) changeEmail(writer http.ResponseWriter, request *http.Request) {
	user := handler.currentSession(request).User
	forms := defaultProfileForms(user)

	form, ok := parseForm(writer, request, FieldNewEmail)
	if !ok {
		return
	}
	forms.Email = form

	if ValidateEmail(form) != nil {
		render(writer, request, http.StatusUnprocessableEntity, profileView(user, forms))
		return
	}

	err := handler.client.ChangeEmail(request.Context(), requestutil.SessionToken(request),
		strings.TrimSpace(form.Get(FieldNewEmail)), constants.RouteEmailVerified)
	if err != nil {
		form.Fail(err, messageEmailFailed)
		render(writer, request, failureStatus(err), profileView(user, forms))
		return
	}

	form.Succeed(messageEmailRequested, false)
	render(writer, request, http.StatusOK, profileView(user, forms))
}

// # Password

func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	user := handler.currentSession(request).User
	forms := defaultProfileForms(user)

	form, ok := parseForm(writer, request, FieldCurrentPassword, FieldNewPassword, FieldRevokeOtherSessions)
	if !ok {
		return
	}
	forms.Password = form

	if ValidatePassword(form) != nil {
		render(writer, request, http.StatusUnprocessableEntity, profileView(user, forms))
		return
	}

	err := handler.client.ChangePassword(request.Context(), requestutil.SessionToken(request), authclient.ChangePasswordInput{
		CurrentPassword:     form.Get(FieldCurrentPassword),
		NewPassword:         form.Get(FieldNewPassword),
		RevokeOtherSessions: form.Checked(FieldRevokeOtherSessions),
	})
	if err != nil {
		form.Fail(err, messagePasswordFailed)
		render(writer, request, failureStatus(err), profileView(user, forms))
		return
	}

	form.Succeed(messagePasswordChanged, true)
	render(writer, request, http.StatusOK, profileView(user, forms))
}
