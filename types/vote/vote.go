package vote

// CastVotesRequest represents the request payload for casting votes
type CastVotesRequest struct {
	CandidateIDs []uint `json:"candidate_ids" validate:"required,min=1,dive,gt=0"`
}

// CastVotesResponse confirms a recorded ballot
type CastVotesResponse struct {
	Message   string `json:"message"`
	Recorded  int    `json:"recorded"`
	Remaining int    `json:"remaining"`
}

// CandidateResult is one row of the tally, ordered by vote count
type CandidateResult struct {
	CandidateID uint   `json:"candidate_id"`
	Name        string `json:"name"`
	VoteCount   int64  `json:"vote_count"`
}

// ResultsResponse represents the full election results view
type ResultsResponse struct {
	Results         []CandidateResult `json:"results"`
	TotalVotes      int64             `json:"total_votes"`
	TotalVotesToday int64             `json:"total_votes_today"`
}
