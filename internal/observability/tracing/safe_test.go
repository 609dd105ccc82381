package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

type codedErr struct{}

func (codedErr) Error() string { return "person 110101199001011234 is 70" }
func (codedErr) Code() string  { return "AgeOutOfRange" }

func TestSafeAttributesDropsPersonalData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/applications"),
		attribute.String("insured.id_number", "110101199001011234"),
		attribute.String("company.credit_code", "91310000"),
		attribute.String("product_id", "42"),
	)
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, string(a.Key))
	}
	assert.ElementsMatch(t, []string{"http.route", "product_id"}, keys)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(codedErr{}), "AgeOutOfRange")
	assert.EqualError(t, SafeError(errors.New("boom")), "boom")
}
