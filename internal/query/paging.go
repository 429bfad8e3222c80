package query

import (
	"github.com/nlstn/go-odata-engine/internal/data"
	"github.com/nlstn/go-odata-engine/internal/queryerrors"
	"github.com/nlstn/go-odata-engine/internal/skiptoken"
)

// ApplySkip removes up to n entities from the front of the collection.
func ApplySkip(coll *data.EntityCollection, n int) error {
	if n < 0 {
		return queryerrors.Validation("skip value must not be negative")
	}
	if coll != nil {
		coll.PopFront(n)
	}
	return nil
}

// ApplyTop removes entities from the back until at most n remain.
func ApplyTop(coll *data.EntityCollection, n int) error {
	if n < 0 {
		return queryerrors.Validation("top value must not be negative")
	}
	if coll == nil {
		return nil
	}
	for coll.Len() > n {
		coll.PopBack()
	}
	return nil
}

// ApplyServerSidePaging cuts the page addressed by skipToken out of the
// collection and, when more entities follow, sets coll.Next to rawURI with
// $skiptoken advanced to the next page. A pageSize <= 0 selects
// DefaultPageSize.
func ApplyServerSidePaging(coll *data.EntityCollection, skipToken *string, rawURI string, pageSize int) error {
	if coll == nil {
		return nil
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page, err := skiptoken.ParsePage(skipToken)
	if err != nil {
		return err
	}

	// compare before multiplying so huge pages cannot overflow
	if page > coll.Len()/pageSize {
		return queryerrors.Validation("invalid skiptoken")
	}
	itemsToSkip := pageSize * page

	coll.PopFront(itemsToSkip)
	remaining := coll.Len()
	for coll.Len() > pageSize {
		coll.PopBack()
	}

	if remaining > pageSize {
		next, err := skiptoken.NextLink(rawURI, page+1)
		if err != nil {
			return err
		}
		coll.Next = next
	}
	return nil
}
