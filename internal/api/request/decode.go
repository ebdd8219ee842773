package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ijo-project/ijo-backend/internal/api/apierr"
	"github.com/ijo-project/ijo-backend/internal/model"
)

// maxBodyBytes caps request bodies; CMS values are the largest legitimate payload
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names rather than Go struct names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("game_variant", func(fl validator.FieldLevel) bool {
		_, ok := model.LookupGameVariant(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("item_type", func(fl validator.FieldLevel) bool {
		return model.ItemType(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("max_score", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(model.MaxScore)
	})
	return v
}

// Decode reads a JSON body into dst and validates it. The returned error is ready for
// apierr.WriteError.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.NewInvalidRequestError("request body is required")
		}
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return Validate(dst)
}

// Validate checks dst against its validate tags
func Validate(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.NewInvalidRequestError(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apierr.NewInvalidRequestError(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max_score":
		return fmt.Sprintf("%s must be at most %d", fe.Field(), model.MaxScore)
	case "game_variant":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(model.GameVariantNames(), ", "))
	case "item_type":
		names := make([]string, len(model.ItemTypes))
		for i, t := range model.ItemTypes {
			names[i] = string(t)
		}
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
