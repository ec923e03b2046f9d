package contracts

import "github.com/julienschmidt/httprouter"

// Handler is anything that mounts its own routes on the shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}
