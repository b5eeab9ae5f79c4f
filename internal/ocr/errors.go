package ocr

import "github.com/rotisserie/eris"

// ErrUnreadableImage is returned when the input file cannot be opened or decoded.
var ErrUnreadableImage = eris.New("unable to read the image")

// ErrNoText is returned when recognition yields no usable letters.
var ErrNoText = eris.New("no text detected in the image")
