package vars

// DerefOrZero dereferences ptr, yielding the zero value for nil.
func DerefOrZero[T any](ptr *T) (ret T) {
	if ptr == nil {
		return
	}
	return *ptr
}
