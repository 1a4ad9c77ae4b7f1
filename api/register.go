package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/models"
	"github.com/Goofygiraffe06/signup/internal/provider"
	"github.com/Goofygiraffe06/signup/internal/register"
	"github.com/Goofygiraffe06/signup/internal/utils"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Messages for fields the browser would normally refuse to submit.
const (
	MsgNameRequired     = "Please enter your name"
	MsgEmailRequired    = "Please enter your email"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgPasswordRequired = "Please enter a password"
)

type registerPage struct {
	Name     string
	Email    string
	Error    string
	Success  string
	Notice   string
	LoginURL string
}

// outcome is the result of one submission as seen by a handler.
type outcome struct {
	status register.Status
	notice string
	input  register.Input
}

// RegisterPageHandler serves the empty registration form.
func RegisterPageHandler(loginURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondPage(w, http.StatusOK, "register.html", registerPage{LoginURL: loginURL})
	}
}

// RegisterFormHandler handles form posts and re-renders the page with the outcome.
func RegisterFormHandler(p provider.Provider, loginURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			logging.WarnLog("Registration form rejected: %v", err)
			respondPage(w, http.StatusBadRequest, "register.html", registerPage{Error: "Invalid form submission", LoginURL: loginURL})
			return
		}

		req := bindRequest(models.RegisterRequest{
			Name:     r.PostForm.Get("name"),
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
		})

		out := submit(r, p, req)
		page := registerPage{
			Name:     out.input.Name,
			Email:    out.input.Email,
			Error:    out.status.Error,
			Success:  out.status.Success,
			Notice:   out.notice,
			LoginURL: loginURL,
		}

		code := http.StatusOK
		if out.status.Error != "" {
			code = http.StatusUnprocessableEntity
		}
		respondPage(w, code, "register.html", page)
	}
}

// RegisterJSONHandler is the JSON variant of the form post.
func RegisterJSONHandler(p provider.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			logging.WarnLog("Registration failed: invalid JSON")
			respondJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON"})
			return
		}

		out := submit(r, p, bindRequest(body))
		if out.status.Error != "" {
			respondJSON(w, http.StatusUnprocessableEntity, models.RegisterResponse{Error: out.status.Error})
			return
		}
		respondJSON(w, http.StatusOK, models.RegisterResponse{Success: out.status.Success, Notice: out.notice})
	}
}

// bindRequest trims the text fields; the password is taken verbatim.
func bindRequest(req models.RegisterRequest) models.RegisterRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	return req
}

// submit checks required fields and then runs the registration controller.
// The provider sequence is detached from the request so a disconnecting
// client cannot abandon a half-finished registration.
func submit(r *http.Request, p provider.Provider, req models.RegisterRequest) outcome {
	in := register.Input{Name: req.Name, Email: req.Email, Password: req.Password}

	if msg := requiredFieldMessage(req); msg != "" {
		logging.DebugLog("Registration rejected: %s", msg)
		return outcome{status: register.Status{Error: msg}, input: in}
	}

	var notice string
	reqID := middleware.GetReqID(r.Context())
	emailHash := utils.HashEmail(req.Email)

	ctrl := register.NewController(p,
		register.WithNotifier(register.NotifierFunc(func(_ context.Context, msg string) {
			notice = msg
		})),
		register.WithObserver(func(phase register.Phase, st register.Status) {
			logging.DebugLog("Registration [%s] req=%s phase=%s", emailHash, reqID, phase)
		}),
	)

	status := ctrl.Submit(context.WithoutCancel(r.Context()), in)
	return outcome{status: status, notice: notice, input: ctrl.Input()}
}

// requiredFieldMessage reports the first missing or malformed field, in form order.
func requiredFieldMessage(req models.RegisterRequest) string {
	err := validate.Struct(req)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid form submission"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		return MsgNameRequired
	case "Email":
		if fe.Tag() == "email" {
			return MsgEmailInvalid
		}
		return MsgEmailRequired
	default:
		return MsgPasswordRequired
	}
}
