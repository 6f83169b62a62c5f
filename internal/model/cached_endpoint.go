package model

// CachedEndpoint represents the dispatch-relevant slice of an endpoint
// stored in Redis. Uses string types for Redis hash compatibility. The
// schema is deliberately absent: conformance is enforced at write time
// only, so dispatch never needs it.
type CachedEndpoint struct {
	ID           string `redis:"id"`
	Name         string `redis:"name"`
	Method       string `redis:"method"`
	Visibility   string `redis:"visibility"`
	ResponseBody string `redis:"response_body"`
}

// ToEndpoint converts CachedEndpoint to the Endpoint domain model.
// Returns an error if the cached body no longer parses as JSON.
func (c *CachedEndpoint) ToEndpoint(ownerID, slug string) (*Endpoint, error) {
	response, err := ParseJSONDocument(c.ResponseBody)
	if err != nil {
		return nil, err
	}

	return &Endpoint{
		ID:         c.ID,
		OwnerID:    ownerID,
		Name:       c.Name,
		Slug:       slug,
		Method:     Method(c.Method),
		Visibility: Visibility(c.Visibility),
		Response:   response,
	}, nil
}

// ToCachedEndpoint converts an Endpoint to its cache representation.
func (e *Endpoint) ToCachedEndpoint() *CachedEndpoint {
	return &CachedEndpoint{
		ID:           e.ID,
		Name:         e.Name,
		Method:       string(e.Method),
		Visibility:   string(e.Visibility),
		ResponseBody: e.Response.String(),
	}
}
