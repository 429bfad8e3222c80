package query

import (
	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/skiptoken"
)

// ApplyDeltaToken sets coll.DeltaLink to rawURI with its $deltatoken
// replaced by "*" and the first four characters of token.
func ApplyDeltaToken(coll *data.EntityCollection, rawURI, token string) error {
	link, err := skiptoken.DeltaLink(rawURI, token)
	if err != nil {
		return err
	}
	if coll != nil {
		coll.DeltaLink = link
	}
	return nil
}
