package collection

import "errors"

var ErrNotConfirming = errors.New("no merge awaiting confirmation")
