package apiv1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ai-tutor-backend/internal/domain"
	"ai-tutor-backend/internal/infra/redis"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

const maxBodyBytes = 1 << 20

var redisKey = redis.UserActionKey

// bindPath binds a required simple-style path parameter into dest.
func bindPath(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return fmt.Errorf("%w: invalid path parameter %s", domain.ErrInvalidArgument, name)
	}
	return nil
}

func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidArgument)
	}
	return nil
}
