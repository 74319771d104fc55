package validators

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20

const msgInvalidBody = "Request body is not valid JSON."

// DecodeJSONBody decodes the request body into dest. Field rules are enforced
// by the services, so only the JSON shape is checked here.
func DecodeJSONBody(r *http.Request, dest any) error {
	return decode(r, dest, false)
}

// DecodeOptionalJSONBody is DecodeJSONBody for endpoints whose body may be
// empty; dest is left untouched in that case.
func DecodeOptionalJSONBody(r *http.Request, dest any) error {
	return decode(r, dest, true)
}

func decode(r *http.Request, dest any, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "Request body is required.")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "Request body is required.")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidBody)
	}
	return nil
}
