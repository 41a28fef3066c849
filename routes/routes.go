package routes

import (
	"net/http"

	"voyago/auth"
	"voyago/avis"
	"voyago/chambres"
	"voyago/filemgr"
	"voyago/hotels"
	"voyago/middleware"
	"voyago/offres"
	"voyago/payes"
	"voyago/ratelim"
	"voyago/receipts"
	"voyago/reservations"
	"voyago/users"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles(filemgr.ServePrefix+"*filepath", http.Dir(uploadDir))
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rl *ratelim.RateLimiter, am *middleware.Auth) {
	router.POST("/register/", rl.Limit(h.Register))
	router.POST("/login/", rl.Limit(h.Login))
	router.POST("/logout/", am.Authenticate(h.Logout))
	router.POST("/token/refresh/", rl.Limit(am.Authenticate(h.RefreshToken)))
}

func AddUserRoutes(router *httprouter.Router, h *users.Handler, am *middleware.Auth) {
	router.POST("/users/", am.Authenticate(h.CreateUser))
	router.GET("/users/", h.GetUsers)
	router.GET("/users/:id", h.GetUser)
	router.PUT("/users/:id", am.Authenticate(h.UpdateUser))
	router.DELETE("/users/:id", am.Authenticate(h.DeleteUser))
}

func AddPayeRoutes(router *httprouter.Router, h *payes.Handler, am *middleware.Auth) {
	router.POST("/payes/", am.Authenticate(h.CreatePaye))
	router.GET("/payes/", h.GetPayes)
	router.GET("/payes/:id", h.GetPaye)
	router.GET("/payes/:id/hotels", h.GetPayeHotels)
	router.PUT("/payes/:id", am.Authenticate(h.UpdatePaye))
	router.DELETE("/payes/:id", am.Authenticate(h.DeletePaye))
}

func AddHotelRoutes(router *httprouter.Router, h *hotels.Handler, fm *filemgr.Handler, am *middleware.Auth) {
	router.POST("/hotels/", am.Authenticate(h.CreateHotel))
	router.GET("/hotels/", h.GetHotels)
	router.GET("/hotels/:id", h.GetHotel)
	router.GET("/hotels/:id/chambres", h.GetHotelChambres)
	router.GET("/hotels/:id/offres", h.GetHotelOffres)
	router.POST("/hotels/:id/images", am.Authenticate(fm.UploadHotelImage))
	router.PUT("/hotels/:id", am.Authenticate(h.UpdateHotel))
	router.DELETE("/hotels/:id", am.Authenticate(h.DeleteHotel))
}

func AddChambreRoutes(router *httprouter.Router, h *chambres.Handler, am *middleware.Auth) {
	router.POST("/chambres/", am.Authenticate(h.CreateChambre))
	router.GET("/chambres/", h.GetChambres)
	router.GET("/chambres/:id", h.GetChambre)
	router.PUT("/chambres/:id", am.Authenticate(h.UpdateChambre))
	router.DELETE("/chambres/:id", am.Authenticate(h.DeleteChambre))
}

func AddOffreRoutes(router *httprouter.Router, h *offres.Handler, am *middleware.Auth) {
	router.POST("/offres/", am.Authenticate(h.CreateOffre))
	router.GET("/offres/", h.GetOffres)
	router.GET("/offres/:id", h.GetOffre)
	router.PUT("/offres/:id", am.Authenticate(h.UpdateOffre))
	router.DELETE("/offres/:id", am.Authenticate(h.DeleteOffre))
}

func AddReservationRoutes(router *httprouter.Router, h *reservations.Handler, rc *receipts.Handler, am *middleware.Auth) {
	router.POST("/reservations/", am.Authenticate(h.CreateReservation))
	router.GET("/reservations/", h.GetReservations)
	router.GET("/reservations/:id", h.GetReservation)
	router.GET("/reservations/:id/recu", am.Authenticate(rc.GetRecu))
	router.PUT("/reservations/:id", am.Authenticate(h.UpdateReservation))
	router.DELETE("/reservations/:id", am.Authenticate(h.DeleteReservation))
}

func AddAvisRoutes(router *httprouter.Router, h *avis.Handler, am *middleware.Auth) {
	router.POST("/avis/", am.Authenticate(h.CreateAvis))
	router.GET("/avis/", h.GetAllAvis)
	router.GET("/avis/:id", h.GetAvis)
	router.PUT("/avis/:id", am.Authenticate(h.UpdateAvis))
	router.DELETE("/avis/:id", am.Authenticate(h.DeleteAvis))
}
