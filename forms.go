package formcoord

import (
	"embed"
	"io/fs"
)

//go:embed forms/*.yaml forms/*.json
var embeddedForms embed.FS

// SampleFormsFS exposes the bundled sample definitions and OpenAPI document.
//
//	def, err := formcoord.LoadDefinitionFS(formcoord.SampleFormsFS(), "signup.yaml")
func SampleFormsFS() fs.FS {
	sub, err := fs.Sub(embeddedForms, "forms")
	if err != nil {
		return embeddedForms
	}
	return sub
}
