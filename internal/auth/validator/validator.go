// Package validator checks registration, login and profile update payloads.
package validator

import (
	"regexp"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/store"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/validate"
)

var (
	hasDigit  = regexp.MustCompile(`\d`)
	hasLetter = regexp.MustCompile(`[a-zA-Zа-яА-Я]`)
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// Register validates name, email, password and confirmPassword. The
// confirmation is compared only once every field is otherwise valid.
func Register(body validate.Body) (RegisterInput, error) {
	c := validate.New(body)
	var in RegisterInput

	if name, ok := c.Required("name"); ok {
		in.Name = strings.TrimSpace(name)
		checkName(c, in.Name)
	}
	if email, ok := c.Required("email"); ok {
		in.Email = strings.TrimSpace(email)
		c.Email("email", in.Email)
	}
	if password, ok := c.Required("password"); ok {
		in.Password = password
		checkPassword(c, password)
	}
	confirm, confirmOK := c.Required("confirmPassword")

	if c.Valid() && confirmOK && confirm != in.Password {
		c.Add("confirmPassword", validate.CodeCustom, "Passwords do not match")
	}
	if err := c.Err(); err != nil {
		return RegisterInput{}, err
	}
	return in, nil
}

func Login(body validate.Body) (LoginInput, error) {
	c := validate.New(body)
	var in LoginInput

	if email, ok := c.Required("email"); ok {
		in.Email = strings.TrimSpace(email)
		c.Email("email", in.Email)
	}
	if password, ok := c.Required("password"); ok {
		in.Password = password
		c.Length("password", password, 1, 0, "Password must not be empty", "")
	}
	if err := c.Err(); err != nil {
		return LoginInput{}, err
	}
	return in, nil
}

// Update validates a partial profile change. Absent fields stay nil.
func Update(body validate.Body) (store.UserUpdate, error) {
	c := validate.New(body)
	var upd store.UserUpdate

	if name, ok := c.Optional("name"); ok && name != nil {
		trimmed := strings.TrimSpace(*name)
		checkName(c, trimmed)
		upd.Name = &trimmed
	}
	if email, ok := c.Optional("email"); ok && email != nil {
		trimmed := strings.TrimSpace(*email)
		c.Email("email", trimmed)
		upd.Email = &trimmed
	}
	if password, ok := c.Optional("password"); ok && password != nil {
		checkPassword(c, *password)
		upd.Password = password
	}
	if avatar, ok := c.Optional("avatar"); ok && avatar != nil {
		c.URL("avatar", *avatar, "Avatar must be a valid URL")
		upd.Avatar = avatar
	}
	if err := c.Err(); err != nil {
		return store.UserUpdate{}, err
	}
	return upd, nil
}

func checkName(c *validate.Checker, name string) {
	c.Length("name", name, 2, 50,
		"Name must be at least 2 characters",
		"Name must be at most 50 characters")
}

func checkPassword(c *validate.Checker, password string) {
	c.Length("password", password, 6, 100,
		"Password must be at least 6 characters",
		"Password must be at most 100 characters")
	c.Match("password", password, hasDigit, "Password must contain at least one digit")
	c.Match("password", password, hasLetter, "Password must contain at least one letter")
}
