package bot

// Keyboard labels and canned replies. Button labels double as message
// routing keys, so they live in one place.
const (
	kbSignUp      = "Sign up for yoga"
	kbMyEvents    = "My yoga sessions"
	kbPickOffice  = "Choose favorite office"
	kbCancelEvent = "Cancel a registration"

	msgRegistered        = "You are registered! Please enter your employee id to finish signing up."
	msgAlreadyRegistered = "You are already registered. Please enter your employee id to update your data."
	msgRegisterFailed    = "Something went wrong during registration, please try again later."
	msgDataUpdated       = "Your data has been updated."
	msgDataUpdateFailed  = "Could not update your employee id, please try again later."
	msgNoAvailable       = "No sessions are available right now."
	msgNoOwnEvents       = "You are not signed up for any upcoming sessions."
	msgNoRoster          = "Nobody has signed up for the upcoming sessions yet."
	msgPickEvent         = "Pick a session to join:"
	msgPickCancel        = "Pick a registration to cancel:"
	msgPickOffice        = "Pick your favorite office:"
	msgJoined            = "You are signed up. See you there!"
	msgCancelled         = "Your registration has been cancelled."
	msgOfficeSaved       = "Favorite office saved."
	msgAPIDown           = "The service is unavailable right now, please try again later."
)
