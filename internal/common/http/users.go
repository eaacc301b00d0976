package http

import (
	"net/http"
)

type UserSummary struct {
	Name  string `json:"name"`
	Notes int    `json:"notes"`
}

type UsersResponse struct {
	Users []UserSummary `json:"users"`
}

// UsersFunc lists registered users in a stable order.
type UsersFunc func() []UserSummary

func UsersHandler(users UsersFunc) http.HandlerFunc {
	return RequireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		resp := UsersResponse{Users: []UserSummary{}}
		if users != nil {
			if list := users(); list != nil {
				resp.Users = list
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	})
}
