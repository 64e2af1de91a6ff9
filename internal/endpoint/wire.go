package endpoint

import (
	"fmt"

	"patientboard/internal/dnd"
)

const (
	ReorderPath  = "/ajaxreorder"
	TransferPath = "/ajaxtransfer"
)

func SpeciesReorderPath(home int64) string {
	return fmt.Sprintf("/home/%d/species/reorder", home)
}

// ReorderRequest is the body of POST /ajaxreorder. The server reads "Id".
type ReorderRequest struct {
	ID    int64   `json:"Id"`
	Order []int64 `json:"Order"`
}

// OrderedList is one side of a transfer, and the body of a species reorder.
type OrderedList struct {
	ID    int64   `json:"ID"`
	Order []int64 `json:"Order"`
}

// TransferRequest is the body of POST /ajaxtransfer.
type TransferRequest struct {
	Sender   OrderedList `json:"Sender"`
	Receiver OrderedList `json:"Receiver"`
	Patient  int64       `json:"Patient"`
}

// order converts item ids; the result is never nil so it encodes as [].
func order(ids []dnd.ItemID) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		out = append(out, int64(id))
	}
	return out
}

func NewReorderRequest(r dnd.Reorder) ReorderRequest {
	return ReorderRequest{ID: int64(r.Container), Order: order(r.Order)}
}

func NewSpeciesReorderRequest(r dnd.Reorder) OrderedList {
	return OrderedList{ID: int64(r.Container), Order: order(r.Order)}
}

func NewTransferRequest(t dnd.Transfer) TransferRequest {
	return TransferRequest{
		Sender:   OrderedList{ID: int64(t.Sender.Container), Order: order(t.Sender.Order)},
		Receiver: OrderedList{ID: int64(t.Receiver.Container), Order: order(t.Receiver.Order)},
		Patient:  int64(t.Item),
	}
}
