package common

import (
	"fmt"
	"sync"

	"marketplace/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterBindingValidations installs the domain validation tags on gin's default validator.
func RegisterBindingValidations() (err error) {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
			return
		}
		err = domain.RegisterValidations(v)
	})
	return err
}
