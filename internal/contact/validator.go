package contact

import "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/validate"

// Validate checks a submission. Values are kept exactly as sent.
func Validate(body validate.Body) (Input, error) {
	c := validate.New(body)
	var in Input

	if name, ok := c.Required("name"); ok {
		in.Name = name
		c.Length("name", name, 2, 50,
			"Name must be at least 2 characters",
			"Name must be at most 50 characters")
	}
	if email, ok := c.Required("email"); ok {
		in.Email = email
		c.Email("email", email)
	}
	if msg, ok := c.Required("message"); ok {
		in.Message = msg
		c.Length("message", msg, 10, 1000,
			"Message must be at least 10 characters",
			"Message must be at most 1000 characters")
	}
	if err := c.Err(); err != nil {
		return Input{}, err
	}
	return in, nil
}
