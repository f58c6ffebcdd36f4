package port

// Localizer looks up display strings by resource key. Unknown keys resolve to
// the key itself.
type Localizer interface {
	Get(key string) string
}
