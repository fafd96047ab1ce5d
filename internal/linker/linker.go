// Package linker correlates the ownership ledger with the sales table
// and emits bidirectional link descriptors. All cross-reference
// numbering (sale sequence, owner file slots) is centralized here so the
// sale-file numbering and the link-file numbering can never drift apart.
package linker

import (
	"fmt"

	"github.com/parcelgraph/internal/normalize"
	"github.com/parcelgraph/internal/owner"
)

// SaleEvent is one sales-table row. Sequence is its 1-based position in
// document row order, which is authoritative: duplicate or unparsable
// dates would otherwise collide.
type SaleEvent struct {
	Sequence     int
	TransferDate string
	Price        *float64
}

// NumberSales assigns the 1-based sequence index to sales in row order.
// This is the only place sequence numbers are produced.
func NumberSales(sales []SaleEvent) []SaleEvent {
	for i := range sales {
		sales[i].Sequence = i + 1
	}
	return sales
}

// Entry is one ledger date with its classified owners, in ledger order.
type Entry struct {
	Date   string
	Owners []owner.Classified
}

// Link ties one owner entity file to one sale entity file.
type Link struct {
	OwnerKind  owner.Kind
	DateIndex  int // 1-based ledger date position
	OwnerIndex int // 1-based position within the date's owner list
	Sequence   int // matched sale's sequence index
}

// OwnerSlot names an owner entity's file slot.
func OwnerSlot(kind owner.Kind, dateIndex, ownerIndex int) string {
	return fmt.Sprintf("%s_%d_%d", kind, dateIndex, ownerIndex)
}

// SaleSlot names a sale entity's file slot.
func SaleSlot(sequence int) string {
	return fmt.Sprintf("sales_%d", sequence)
}

// OwnerFile returns the owner-side file slot of the link.
func (l Link) OwnerFile() string { return OwnerSlot(l.OwnerKind, l.DateIndex, l.OwnerIndex) }

// SaleFile returns the sale-side file slot of the link.
func (l Link) SaleFile() string { return SaleSlot(l.Sequence) }

// RelationshipFile returns the link descriptor's own file slot.
func (l Link) RelationshipFile() string {
	return fmt.Sprintf("relationship_sales_%s_%d_%d", l.OwnerKind, l.DateIndex, l.OwnerIndex)
}

// Correlate produces a link for every ledger owner whose date exactly
// equals some sale's transfer date after identical normalization on both
// sides. Sales are scanned in sequence order and the first match wins;
// an owner with no matching sale is simply not linked (the owner entity
// is still emitted by the assembler).
//
// Known limitation: when two ledger dates normalize to the same sale
// date, both link to that sale's index. The source behavior does not
// disambiguate further and neither does this implementation.
func Correlate(entries []Entry, sales []SaleEvent) []Link {
	var links []Link
	for i, entry := range entries {
		seq := 0
		for _, sale := range sales {
			if normalize.SameDate(sale.TransferDate, entry.Date) {
				seq = sale.Sequence
				break
			}
		}
		if seq == 0 {
			continue
		}
		for j, owned := range entry.Owners {
			links = append(links, Link{
				OwnerKind:  owned.Kind,
				DateIndex:  i + 1,
				OwnerIndex: j + 1,
				Sequence:   seq,
			})
		}
	}
	return links
}
