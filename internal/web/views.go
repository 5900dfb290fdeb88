// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

//go:generate templ generate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/taibuivan/yomira-id/internal/platform/constants"
	"github.com/taibuivan/yomira-id/internal/users/auth"
)

// SocialLink is a "Sign in with ..." button.
type SocialLink struct {
	Label string
	URL   string
}

// ProfileForms groups the three forms of the profile page.
type ProfileForms struct {
	Details  *Form
	Email    *Form
	Password *Form
}

// input describes one labelled field. Password values are never echoed back.
type input struct {
	field        string
	label        string
	kind         string
	autocomplete string
	placeholder  string
}

type detailRow struct {
	label string
	value string
}

// content is the value of the refresh meta tag.
func (redirect *DelayedRedirect) content() string {
	return fmt.Sprintf("%d;url=%s", int(redirect.After.Seconds()), redirect.To)
}

// signInAction keeps the callback on the form target so a failed attempt
// does not lose it.
func signInAction(form *Form) string {
	action := constants.RouteSignIn
	if callback := form.Get(FieldCallbackURL); callback != "" {
		action += "?" + url.Values{FieldCallbackURL: {callback}}.Encode()
	}
	return action
}

func verificationOutcome(failed bool) (title, message string) {
	if failed {
		return "Link expired", "This link is invalid or has expired. Please request a new one."
	}
	return "Email verified", "Your email address has been confirmed."
}

func accountRows(user *auth.User) []detailRow {
	return []detailRow{
		{"Name", user.Name},
		{"Email", user.Email},
		{"Role", string(user.Role)},
		{"Email verified", yesNo(user.EmailVerified)},
	}
}

func hasImage(user *auth.User) bool {
	return user.Image != nil && *user.Image != ""
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func initials(name string) string {
	var letters []string
	for _, word := range strings.Fields(name) {
		letters = append(letters, strings.ToUpper(string([]rune(word)[:1])))
		if len(letters) == 2 {
			break
		}
	}
	return strings.Join(letters, "")
}
