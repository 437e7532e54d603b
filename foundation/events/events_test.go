package events_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/ethpool/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan out pool events to subscribers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two subscribers are registered.", testID)
		{
			evt := events.New()
			a := evt.Subscribe("a")
			b := evt.Subscribe("b")

			if evt.Subscribe("a") != a {
				t.Fatalf("\t%s\tTest %d:\tShould return the same channel for the same id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould return the same channel for the same id.", success, testID)

			evt.Publishf("state: Deposit: %s", "0x01")

			for _, ch := range []<-chan string{a, b} {
				if msg := <-ch; msg != "state: Deposit: 0x01" {
					t.Fatalf("\t%s\tTest %d:\tShould receive the message, got %q.", failed, testID, msg)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould deliver the message to every subscriber.", success, testID)

			if err := evt.Unsubscribe("a"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to unsubscribe: %v", failed, testID, err)
			}
			if _, open := <-a; open {
				t.Fatalf("\t%s\tTest %d:\tShould close the channel on unsubscribe.", failed, testID)
			}
			if err := evt.Unsubscribe("a"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail to unsubscribe twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close the channel on unsubscribe.", success, testID)

			evt.Shutdown()
			if _, open := <-b; open || evt.Subscribers() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould close every channel on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel on shutdown.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen a subscriber falls behind.", testID)
		{
			evt := events.New()
			evt.Subscribe("slow")

			for i := 0; i < 110; i++ {
				evt.Publish(fmt.Sprint(i))
			}

			if dropped := evt.Dropped("slow"); dropped != 10 {
				t.Fatalf("\t%s\tTest %d:\tShould drop the overflow, got %d.", failed, testID, dropped)
			}
			t.Logf("\t%s\tTest %d:\tShould drop the overflow without blocking.", success, testID)
		}
	}
}
