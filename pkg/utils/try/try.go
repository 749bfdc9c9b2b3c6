package try

// Fataler is anything with Fatal, like *testing.T or log.Logger.
type Fataler interface {
	Fatal(...any)
}

// Either wraps a (value, error) pair.
type Either[T any] interface {
	// Get returns the pair as-is.
	Get() (T, error)

	// OrFatal returns the value, or calls ftl.Fatal with the error.
	//
	// If ftl has a Helper method (like *testing.T), it is called first.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value, or d when the Either holds an error.
	OrDefault(d T) T
}

// To wraps a function result as an Either.
func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{ok}
	}
	return tryNg[T]{ng}
}

type tryOk[T any] struct {
	value T
}

func (ok tryOk[T]) Get() (T, error)   { return ok.value, nil }
func (ok tryOk[T]) OrDefault(T) T     { return ok.value }
func (ok tryOk[T]) OrFatal(Fataler) T { return ok.value }

type tryNg[T any] struct {
	err error
}

func (ng tryNg[T]) Get() (T, error) { return *new(T), ng.err }
func (ng tryNg[T]) OrDefault(d T) T { return d }
func (ng tryNg[T]) OrFatal(ftl Fataler) T {
	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(ng.err)
	return *new(T)
}
