package badger

// NewMemoryRepositories creates repositories over an in-memory badger
// instance for testing. The caller closes the returned backend.
func NewMemoryRepositories() (*ChunkRepository, *JobRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	chunks, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	return chunks, NewJobRepository(backend), backend, nil
}
