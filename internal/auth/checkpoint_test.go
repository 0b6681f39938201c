package auth

import (
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Checkpoint", func() {
	var checkpoint *Checkpoint

	ginkgo.BeforeEach(func() {
		checkpoint = NewCheckpoint(testLogger)
	})

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	injectUser := func(user *User) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
			})
		}
	}

	newRouter := func(user *User, skip bool, pattern string) *chi.Mux {
		router := chi.NewRouter()
		router.Route(APIPrefix, func(r chi.Router) {
			if user != nil {
				r.Use(injectUser(user))
			}
			r.With(checkpoint.Authorize(skip)).Get(pattern, okHandler)
		})
		return router
	}

	ginkgo.It("should allow a principal holding the route's permit", func() {
		user := &User{ID: 1, FirstName: "Rosa", Permissions: []string{"/crops/all"}}
		router := newRouter(user, false, "/crops/all")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, APIPrefix+"/crops/all", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should deny a principal lacking the permit and name it in the message", func() {
		user := &User{ID: 1, FirstName: "Rosa", Permissions: []string{"/harvests/all"}}
		router := newRouter(user, false, "/crops/all")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, APIPrefix+"/crops/all", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("Rosa needs a permit for this action"))
	})

	ginkgo.It("should match parameterized route patterns, not concrete paths", func() {
		user := &User{ID: 1, FirstName: "Rosa", Permissions: []string{"/crops/{id}"}}
		router := newRouter(user, false, "/crops/{id}")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, APIPrefix+"/crops/42", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should allow any authenticated principal on a skip-path-validation route", func() {
		user := &User{ID: 1, FirstName: "Rosa", Permissions: nil}
		router := newRouter(user, true, "/users/me")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, APIPrefix+"/users/me", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should reject requests without a resolved principal", func() {
		router := newRouter(nil, false, "/crops/all")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, APIPrefix+"/crops/all", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should even reject unauthenticated requests on skip-path routes", func() {
		router := newRouter(nil, true, "/users/me")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, APIPrefix+"/users/me", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})
})
