package http

import (
	"net/http"
	"time"

	httpmw "github.com/cptblues/team-visio/internal/transport/http/middleware"
	"github.com/cptblues/team-visio/internal/transport/ws"
	"github.com/cptblues/team-visio/pkg/httputil"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterDeps struct {
	Handler  *Handler
	WS       *ws.Server
	Auth     httpmw.AuthResolver
	HealthFn func() error
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.HealthFn != nil {
			if err := d.HealthFn(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// realtime: токен идет query-параметром, не заголовком
	r.Get("/ws", d.WS.HandleWS)

	h := d.Handler
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", h.Register)
		ar.Post("/login", h.Login)

		ar.Group(func(pr chi.Router) {
			pr.Use(httpmw.AuthMiddleware(d.Auth))
			pr.Post("/logout", h.Logout)
			pr.Get("/me", h.Me)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(d.Auth))

		pr.Route("/rooms", func(rt chi.Router) {
			rt.Post("/", h.CreateRoom)
			rt.Get("/", h.ListRooms)

			rt.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", h.GetRoom)
				rr.Patch("/", h.UpdateRoom)
				rr.Delete("/", h.DeleteRoom)
				rr.Post("/join", h.JoinRoom)
				rr.Post("/leave", h.LeaveRoom)
				rr.Get("/participants", h.RoomParticipants)
			})
		})

		pr.Route("/halls", func(rt chi.Router) {
			rt.Post("/", h.CreateHall)
			rt.Get("/", h.ListHalls)
			rt.Get("/mine", h.GetMyHall)

			rt.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", h.GetHall)
				rr.Patch("/", h.UpdateHall)
				rr.Delete("/", h.DeleteHall)
			})
		})

		pr.Route("/admin", func(rt chi.Router) {
			rt.Get("/users", h.ListUsers)
			rt.Put("/users/{id}/admin", h.SetAdminStatus)
			rt.Post("/self", h.MakeSelfAdmin)
		})

		pr.Route("/meet", func(rt chi.Router) {
			rt.Get("/", h.MeetingState)
			rt.Get("/participants", h.MeetParticipants)
			rt.Post("/dispose", h.DisposeMeeting)
			rt.Post("/commands/{name}", h.MeetCommand)
			rt.Post("/{roomID}/start", h.StartMeeting)
		})
	})

	return r
}
