package main

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form/v4"

	"go.segfaultmedaddy.com/inertia-adapter"
	"go.segfaultmedaddy.com/inertia-adapter/inertiaprops"
)

//nolint:gochecknoglobals
var formDecoder = form.NewDecoder()

var errUserNotFound = errors.New("user not found")

type user struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    int    `json:"id"`
}

type updateUserForm struct {
	Name  string `form:"name"`
	Email string `form:"email"`
}

// userStore is an in-memory user repository.
type userStore struct {
	users map[int]user
	mu    sync.RWMutex
}

func newUserStore() *userStore {
	return &userStore{
		users: map[int]user{
			1: {ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"},
			2: {ID: 2, Name: "Alan Turing", Email: "alan@example.com"},
		},
		mu: sync.RWMutex{},
	}
}

func (s *userStore) list() []user {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]user, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}

	slices.SortFunc(users, func(a, b user) int { return cmp.Compare(a.ID, b.ID) })

	return users
}

func (s *userStore) get(id int) (user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user{}, errUserNotFound
	}

	return u, nil
}

func (s *userStore) update(id int, f updateUserForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return errUserNotFound
	}

	u.Name = cmp.Or(strings.TrimSpace(f.Name), u.Name)
	u.Email = cmp.Or(strings.TrimSpace(f.Email), u.Email)
	s.users[id] = u

	return nil
}

func (s *userStore) handleIndex(w http.ResponseWriter, r *http.Request) {
	inertia.MustRender(w, r, "Users/Index", inertia.NewProp("users", s.list()))
}

func (s *userStore) handleShow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusNotFound, nil)
		return
	}

	u, err := s.get(id)
	if err != nil {
		inertia.MustRenderStatus(w, r, http.StatusNotFound, "Errors/NotFound", inertia.NewProp("id", id))
		return
	}

	inertia.MustRender(w, r, "Users/Show", inertia.Props{
		inertia.NewProp("user", u),
		inertia.NewAlways("userId", u.ID),
		// Only loaded when the page asks for it with a partial reload.
		inertia.NewOptional("activity", inertia.LazyFunc(func(context.Context) (any, error) {
			return []string{"signed in", "updated profile"}, nil
		})),
	})
}

func (s *userStore) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusNotFound, nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	var f updateUserForm
	if err := formDecoder.Decode(&f, r.PostForm); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := s.update(id, f); err != nil {
		renderError(w, r, http.StatusNotFound, nil)
		return
	}

	// The middleware turns this into a 303 for PUT.
	http.Redirect(w, r, "/users/"+strconv.Itoa(id), http.StatusFound)
}

func aboutProps() inertia.Proper {
	return inertiaprops.Map{
		"adapter":  "net/http",
		"protocol": "https://inertiajs.com/the-protocol",
	}
}
