package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Upper bounds for ingredient amounts and cooking time; both fit the INTEGER
// columns they are stored in
const (
	MaxAmount      = math.MaxInt16
	MaxCookingTime = math.MaxInt32
)

const colorMessage = "Color must be a HEX value such as #49B64E."

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IngredientAmount is one (ingredient id, amount) pair of a recipe.
type IngredientAmount struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

// ValidateRecipeComposition rejects empty ingredient or tag lists,
// amounts outside 1..MaxAmount and repeated ids. On success the inputs are
// returned unchanged.
func ValidateRecipeComposition(ingredients []IngredientAmount, tagIDs []uint) ([]IngredientAmount, []uint, error) {
	errs := Errors{}

	if len(ingredients) == 0 {
		errs.Add("ingredients", "At least one ingredient is required.")
	}
	seenIngredients := make(map[uint]struct{}, len(ingredients))
	for _, item := range ingredients {
		if item.Amount <= 0 {
			errs.Add("ingredients", "Amount must be greater than 0.")
			break
		}
		if item.Amount > MaxAmount {
			errs.Add("ingredients", fmt.Sprintf("Amount must be at most %d.", MaxAmount))
			break
		}
		if _, dup := seenIngredients[item.ID]; dup {
			errs.Add("ingredients", "Ingredients must be unique.")
			break
		}
		seenIngredients[item.ID] = struct{}{}
	}

	if len(tagIDs) == 0 {
		errs.Add("tags", "At least one tag is required.")
	}
	seenTags := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seenTags[id]; dup {
			errs.Add("tags", "Tags must be unique.")
			break
		}
		seenTags[id] = struct{}{}
	}

	if err := errs.OrNil(); err != nil {
		return nil, nil, err
	}
	return ingredients, tagIDs, nil
}

// ValidateCookingTime requires at least one minute and at most MaxCookingTime.
func ValidateCookingTime(minutes int) error {
	if minutes < 1 {
		return New("cooking_time", "Cooking time must be at least 1 minute.")
	}
	if minutes > MaxCookingTime {
		return New("cooking_time", fmt.Sprintf("Cooking time must be at most %d minutes.", MaxCookingTime))
	}
	return nil
}

// ValidateColor accepts exactly six hex digits after '#'.
func ValidateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return New("color", colorMessage)
	}
	return nil
}

// ValidateUsername allows letters, digits and . @ + - _ only. The error
// is an Errors value keyed by "username".
func ValidateUsername(username string) error {
	if msg := forbiddenUsernameMessage(username); msg != "" {
		return New("username", msg)
	}
	return nil
}

func forbiddenUsernameMessage(username string) string {
	var forbidden strings.Builder
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("_.@+-", r) {
			continue
		}
		forbidden.WriteRune(r)
	}
	if forbidden.Len() == 0 {
		return ""
	}
	return "Forbidden characters: " + strconv.Quote(forbidden.String()) + ". Only letters, digits and . @ + - _ are allowed."
}

var registerOnce sync.Once

// RegisterBindings installs the custom rules into gin's validator and makes
// field errors use JSON names. Safe to call more than once.
func RegisterBindings() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if err = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return ValidateColor(fl.Field().String()) == nil
		}); err != nil {
			return
		}
		err = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
	})
	return err
}
