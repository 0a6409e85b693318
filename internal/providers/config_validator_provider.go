package providers

import (
	"errors"

	"github.com/gookit/validate"

	"gamelens/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags of every config section.
func (cv *CnfValidator) Validate() error {
	sections := []interface{}{
		&cv.conf.WebServer,
		&cv.conf.Persistence,
		&cv.conf.Logger,
		&cv.conf.Store,
		&cv.conf.Cache,
	}
	for _, s := range sections {
		v := validate.Struct(s)
		if !v.Validate() {
			return errors.New(v.Errors.One())
		}
	}
	if cv.conf.Cache.DefaultTTL < 0 || cv.conf.Cache.ResponseTTL < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	return nil
}
