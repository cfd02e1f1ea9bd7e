package user

// CreatedEvent carries the freshly persisted user. TempPassword is the
// plaintext generated for the first login; it exists only in the event, never
// in the store.
type CreatedEvent struct {
	Result       User
	TempPassword string
}

type UpdatedEvent struct {
	Result User
}

type DeletedEvent struct {
	Result User
}
