package booking

// Step represents the current logical step of the booking wizard
type Step int

const (
	// StepVehicleConfig covers location, vehicle, variant, color and components
	StepVehicleConfig Step = 1
	// StepInsurance covers core and additional coverage selection
	StepInsurance Step = 2
	// StepFinancing covers payment method, loan tenure and down payment
	StepFinancing Step = 3
	// StepUserInfo covers personal and delivery details
	StepUserInfo Step = 4
	// StepVerification covers OTP contact verification
	StepVerification Step = 5
	// Step 6 is reserved for the payment overlay, which is a modal flag
	// raised over steps 5 and 8 rather than a navigable step.
	// StepSuccess indicates the booking completed
	StepSuccess Step = 7
	// StepFailure indicates the payment failed
	StepFailure Step = 8
)

// FirstStep is where every session starts and where resets land.
const FirstStep = StepVehicleConfig

// CanTransitionTo checks if a step transition is valid
func (s Step) CanTransitionTo(target Step) bool {
	validTransitions := map[Step][]Step{
		StepVehicleConfig: {StepInsurance},
		StepInsurance:     {StepVehicleConfig, StepFinancing},
		StepFinancing:     {StepInsurance, StepUserInfo},
		StepUserInfo:      {StepFinancing, StepVerification},
		// Verification only leaves through the payment overlay outcome
		StepVerification: {StepUserInfo, StepSuccess, StepFailure},
		// Terminal states, escapable only via reset (or payment retry from Failure)
		StepSuccess: {StepVehicleConfig},
		StepFailure: {StepSuccess, StepVehicleConfig},
	}

	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}

	for _, step := range allowed {
		if step == target {
			return true
		}
	}

	return false
}

// IsTerminal returns true if the step is a terminal state
func (s Step) IsTerminal() bool {
	return s == StepSuccess || s == StepFailure
}

func (s Step) String() string {
	switch s {
	case StepVehicleConfig:
		return "VEHICLE_CONFIG"
	case StepInsurance:
		return "INSURANCE"
	case StepFinancing:
		return "FINANCING"
	case StepUserInfo:
		return "USER_INFO"
	case StepVerification:
		return "VERIFICATION"
	case StepSuccess:
		return "SUCCESS"
	case StepFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}
