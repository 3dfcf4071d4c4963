package appconf

// Environment classifies the context the process is running in. The test
// environment refuses to create database files on disk.
type Environment int

const (
	Test Environment = iota
	Development
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps the -env flag value to an Environment,
// defaulting to Development for anything unrecognized.
func EnvFlagToEnvironment(value string) Environment {
	switch value {
	case "test":
		return Test
	case "production":
		return Production
	default:
		return Development
	}
}
