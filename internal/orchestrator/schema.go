package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/basegraph/salesassist/internal/apperr"
)

// compileSchema generates a JSON Schema from v and compiles it once.
// Unlike a tool-call schema, the Opus Magnum document schema must tolerate a
// provider returning fields beyond the ones we know about — that's the
// entire point of domain.OpusMagnumDocument's Raw field — so additional
// properties are allowed here rather than forbidden.
func compileSchema(v any) (*gojsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	generated := reflector.Reflect(v)

	raw, err := json.Marshal(generated)
	if err != nil {
		return nil, fmt.Errorf("marshaling generated schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return schema, nil
}

// validateDocument checks raw against schema, returning a *apperr.Error
// of kind ParseFailed describing every violation on failure.
func validateDocument(schema *gojsonschema.Schema, raw json.RawMessage) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return apperr.Wrap(apperr.KindParseFailed, "running opus magnum document schema validation", err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			violations = append(violations, e.String())
		}
		return apperr.New(apperr.KindParseFailed, "opus magnum document failed schema validation: "+strings.Join(violations, "; "))
	}
	return nil
}
