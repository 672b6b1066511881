package middlewares

import "net/http"

// ViewRecorder es lo que el middleware necesita del contador de uso.
type ViewRecorder interface {
	RecordView()
}

// CountViews incrementa el contador de page views por cada request que
// atraviesa la cadena. Se cuelga de las rutas públicas de navegación, no de
// los endpoints de auth.
func CountViews(rec ViewRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec.RecordView()
			next.ServeHTTP(w, r)
		})
	}
}
