package devserver

import (
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Login issues a credential pair for a valid username/password.
func (s *Server) Login() http.HandlerFunc {
	type request struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	type response struct {
		Access             string `json:"access"`
		Refresh            string `json:"refresh"`
		MustChangePassword bool   `json:"must_change_password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		user, ok := s.users.Authenticate(req.Username, req.Password)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}

		access, err := s.issuer.IssueAccess(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue access credential")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		refresh, err := s.issuer.IssueRefresh(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue refresh credential")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, response{
			Access:             access,
			Refresh:            refresh,
			MustChangePassword: user.MustChangePassword,
		})
	}
}

// RefreshCredential mints a new access credential from a refresh credential.
func (s *Server) RefreshCredential() http.HandlerFunc {
	type request struct {
		Refresh string `json:"refresh"`
	}
	type response struct {
		Access string `json:"access"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		username, err := s.issuer.VerifyRefresh(req.Refresh)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		user, ok := s.users.Get(username)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}

		access, err := s.issuer.IssueAccess(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to issue access credential")
			writeJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, response{Access: access})
	}
}

// Profile returns the signed-in account, exercising the bearer middleware.
func (s *Server) Profile() http.HandlerFunc {
	type response struct {
		UserID             string `json:"user_id"`
		Username           string `json:"username"`
		Role               string `json:"role"`
		MustChangePassword bool   `json:"must_change_password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value(ContextKeyUsername).(string)
		user, ok := s.users.Get(username)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}
		writeJSON(w, http.StatusOK, response{
			UserID:             user.ID,
			Username:           user.Username,
			Role:               string(user.Role),
			MustChangePassword: user.MustChangePassword,
		})
	}
}

// UpdatePassword replaces the account password and clears the forced-reset
// flag.
func (s *Server) UpdatePassword() http.HandlerFunc {
	type request struct {
		NewPassword string `json:"new_password"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
			writeJSONError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		username, _ := r.Context().Value(ContextKeyUsername).(string)
		if err := s.users.UpdatePassword(username, req.NewPassword); err != nil {
			writeJSONError(w, http.StatusBadRequest, "unable to update password")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"detail": "Password updated successfully"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
