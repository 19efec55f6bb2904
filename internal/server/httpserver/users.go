package httpserver

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	id, err := a.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	user, err := a.users.GetByID(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	a.logger.Info(r.Context(), "user registered", "user_id", id)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// handleToken accepts the OAuth2 password form as well as a JSON body.
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	req, err := readTokenRequest(w, r)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	token, err := a.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func readTokenRequest(w http.ResponseWriter, r *http.Request) (tokenRequest, error) {
	var req tokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, fmt.Errorf("%w: malformed form body", common.ErrorValidation)
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	default:
		if err := readJSON(w, r, &req); err != nil {
			return req, err
		}
	}

	if req.Username == "" || req.Password == "" {
		return req, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}
	return req, nil
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())

	user, err := a.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// token outlived its user
			unauthorized(w, common.ErrInvalidToken.Error())
			return
		}
		a.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
