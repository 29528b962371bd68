// Command client prompts for two positions and issues a one-shot route
// request, printing the itinerary as human-readable text. Restores
// original_source/src/ServerNetworkInterface.py's ClientNetworkInterface:
// get_position's "(x,y)" tuple regex with a default fallback, and the
// route-to-text formatting now provided by typedef.Leg.Describe.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"transitcore/api"
	"transitcore/typedef"
)

var tupleRe = regexp.MustCompile(`\(?(-?[0-9]+),\s*(-?[0-9]+)\)?`)

func main() {
	var address string
	var timeoutMs int
	flag.StringVar(&address, "address", "127.0.0.1:28581", "server address")
	flag.IntVar(&timeoutMs, "timeout", 100_000, "search timeout in milliseconds")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)

	start := getPosition(reader, "Start position x,y %s: ", typedef.Position{X: 87, Y: -220})
	end := getPosition(reader, "End position x,y %s: ", typedef.Position{X: 12177, Y: -256})

	client := api.NewClient(address)
	legs, err := client.PlanRoute(start, end, time.Duration(timeoutMs)*time.Millisecond)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(legs) == 0 {
		fmt.Println("No route found.")
		return
	}
	for _, leg := range legs {
		fmt.Println(leg.Describe())
	}
}

func getPosition(reader *bufio.Reader, prompt string, def typedef.Position) typedef.Position {
	defaultText := fmt.Sprintf("(default %d,%d)", def.X, def.Y)
	for {
		fmt.Printf(prompt, defaultText)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			fmt.Println("(default)")
			return def
		}
		m := tupleRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		x, errX := strconv.Atoi(m[1])
		y, errY := strconv.Atoi(m[2])
		if errX != nil || errY != nil {
			continue
		}
		return typedef.Position{X: x, Y: y}
	}
}
