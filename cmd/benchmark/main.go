package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/corefin/matchbook/pkg/book"
	"github.com/corefin/matchbook/pkg/marketdata"
)

const (
	numOrders  = 1_000_000
	matchEvery = 100 // orders per crossing pass
	minPrice   = 100.0
	maxPrice   = 200.0
	minQty     = 1
	maxQty     = 100
)

func randomOrder(id int, now time.Time) *book.Order {
	side := book.BUY
	if rand.Intn(2) == 0 {
		side = book.SELL
	}
	price := minPrice + rand.Float64()*(maxPrice-minPrice)
	qty := int64(rand.Intn(maxQty-minQty+1) + minQty)

	return book.NewOrder(
		fmt.Sprintf("ORD-%06d", id),
		side,
		float64(int(price*100))/100, // round to 2 decimals
		qty,
		now,
	)
}

func main() {
	ob := book.New("ABC")
	tape := marketdata.NewTape()

	totalMatched := 0
	totalQty := int64(0)

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		if err := ob.AddOrder(randomOrder(i, time.Now())); err != nil {
			log.Fatalf("add order %d: %v", i, err)
		}

		if i%matchEvery == 0 {
			for _, tr := range ob.MatchOrders() {
				tape.RecordTrade(tr)
				totalMatched++
				totalQty += tr.Qty
				if totalMatched <= 5 {
					log.Printf("match: BUY[%s] <=> SELL[%s] @ %.2f qty %d\n",
						tr.BuyOrderID, tr.SellOrderID, tr.Price, tr.Qty)
				}
			}
		}
	}
	for _, tr := range ob.MatchOrders() {
		tape.RecordTrade(tr)
		totalMatched++
		totalQty += tr.Qty
	}
	elapsed := time.Since(start)

	vwap, _ := tape.VWAP(tape.Len())

	fmt.Printf("orders:    %d in %v (%.0f orders/sec)\n",
		numOrders, elapsed, float64(numOrders)/elapsed.Seconds())
	fmt.Printf("trades:    %d, qty %d\n", totalMatched, totalQty)
	fmt.Printf("vwap(all): %.4f\n", vwap)
	fmt.Printf("volume 1m: %d\n", tape.VolumeInLastMinute())
}
