// merge.go - Merge command-line overrides onto a loaded script.
package script

// Merge overlays non-empty overrides onto s.
func Merge(s *Script, o Overrides) {
	if o.Face != nil {
		s.Face = *o.Face
	}
	if o.Color != "" {
		s.Color = o.Color
	}
	if o.Image != "" {
		s.Image = o.Image
	}
	if o.Preview != "" {
		s.Output.Preview = o.Preview
	}
	if o.Texture != "" {
		s.Output.Texture = o.Texture
	}
	if o.Video != "" {
		s.Output.Video = o.Video
	}
}
