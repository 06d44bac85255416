package replay

import "errors"

var ErrInvalidTrajectory = errors.New("invalid reference trajectory")
