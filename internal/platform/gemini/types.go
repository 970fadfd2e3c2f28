package gemini

// promptData is the data passed to the prompt template.
type promptData struct {
	InputText string
}

// responseSchema is the expected JSON structure of the model response.
type responseSchema struct {
	// Cards is the array of flashcards generated from the input text
	Cards []cardSchema `json:"cards"`
}

// cardSchema is a single proposed flashcard in the model response.
type cardSchema struct {
	// Front is the question or prompt side of the flashcard
	Front string `json:"front"`

	// Back is the answer side of the flashcard
	Back string `json:"back"`
}
