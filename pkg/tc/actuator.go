package tc

import (
	"context"
)

// Actuator is an interface that installs the command log of a Chain
type Actuator interface {
	// Actuate installs the commands of chain
	Actuate(ctx context.Context, chain Chain) error
	// Validate returns ErrUnsupportedOption if opts carries an option the Actuator does not recognize
	Validate(opts TargetOptions) error
}
