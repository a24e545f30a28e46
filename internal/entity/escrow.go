package entity

type EscrowKey struct {
	AuctionId uint64
	Bidder    string
}

type EscrowEntry struct {
	AuctionId uint64 `json:"auctionId"`
	Bidder    string `json:"bidder"`
	Amount    uint64 `json:"amount"`
}
