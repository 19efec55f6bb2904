// Package admin implements the operator commands of taskctl.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrPasswordMismatch = errors.New("passwords do not match")

type Registrar interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
}

// UserAdd creates an account from the operator's terminal. Missing username
// is prompted for; the password is always read twice without echo.
func UserAdd(ctx context.Context, reg Registrar, reader *bufio.Reader, w io.Writer, username, email string) (int64, error) {
	var err error

	if username == "" {
		username, err = GetSimpleText(reader, "Username", w)
		if err != nil {
			return 0, err
		}
	}

	password, err := GetPassword(w, "Password")
	if err != nil {
		return 0, err
	}
	confirm, err := GetPassword(w, "Repeat password")
	if err != nil {
		return 0, err
	}
	if password != confirm {
		return 0, ErrPasswordMismatch
	}

	id, err := reg.Register(ctx, username, email, password)
	if err != nil {
		return 0, err
	}

	fmt.Fprintf(w, "user %q created with id %d\n", username, id)
	return id, nil
}
