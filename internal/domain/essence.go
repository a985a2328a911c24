package domain

// Domain entity: бизнес-объект (истина).
// Не зависит от Gin, Postgres, Redis.
type Essence struct {
	ID       int64
	Name     string
	Quantity int64
	IsDone   bool
}
