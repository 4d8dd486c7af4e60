package review

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

var (
	MinRating = 1
	MaxRating = 5

	ratingTag  = "rating"
	ratingText = fmt.Sprintf("rating must be an integer between %d and %d", MinRating, MaxRating)
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(ratingTag, ratingValidation)
	core.RegisterCustomTranslation(validate, translator, ratingTag, ratingText)
}

func ratingValidation(fl validator.FieldLevel) bool {
	r := fl.Field().Int()
	return r >= int64(MinRating) && r <= int64(MaxRating)
}

// ratingError turns a failed rating check into ErrInvalidRating.
func ratingError(err error) error {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fe := range vErrs {
			if fe.Tag() == ratingTag {
				return ErrInvalidRating.WithCause(err)
			}
		}
	}
	return err
}
