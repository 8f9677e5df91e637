package scoring

import "errors"

// ErrUnexpectedAddress reports an asset credited to an address that was not
// requested, which means the data source ignored the query filter.
var ErrUnexpectedAddress = errors.New("asset attributed to unrequested address")
