package appium

import (
	"errors"
	"fmt"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
)

// W3C WebDriver error codes the driver reacts to.
const (
	codeNoSuchElement  = "no such element"
	codeStaleElement   = "stale element reference"
	codeInvalidSession = "invalid session id"
)

// WebDriverError is an error response from the server.
type WebDriverError struct {
	Status  int
	Code    string
	Message string
}

func (e *WebDriverError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is maps W3C error codes onto the core taxonomy.
func (e *WebDriverError) Is(target error) bool {
	switch e.Code {
	case codeStaleElement:
		return errors.Is(core.ErrStaleElement, target)
	case codeNoSuchElement:
		return errors.Is(core.ErrElementNotFound, target)
	case codeInvalidSession:
		return errors.Is(core.ErrNoSession, target)
	}
	return false
}

// IsNoSuchElement reports whether err is a "no such element" response.
func IsNoSuchElement(err error) bool {
	var wd *WebDriverError
	return errors.As(err, &wd) && wd.Code == codeNoSuchElement
}
