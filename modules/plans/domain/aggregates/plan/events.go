package plan

type CreatedEvent struct {
	Result Plan
}

type UpdatedEvent struct {
	Result Plan
}

type DeletedEvent struct {
	Result Plan
}

// ContentSyncedEvent fires after a successful batch synchronization commit.
type ContentSyncedEvent struct {
	Result Snapshot
}
