/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math/rand"
	"regexp"
)

// LieGenerator fabricates a plausible first-person statement for a round
// where the acting player is not telling the truth.
type LieGenerator interface {
	GenerateLie(p *Player) string
}

var placeholderPattern = regexp.MustCompile(`\{([a-z0-9_]+)\}`)

// TemplateLieGenerator fills randomly chosen templates with randomly chosen
// replacements. The zero value is not usable; construct with newLieGenerator.
type TemplateLieGenerator struct {
	rng          *rand.Rand
	templates    []string
	replacements map[string][]string
}

func newLieGenerator(rng *rand.Rand) *TemplateLieGenerator {
	return &TemplateLieGenerator{
		rng:          rng,
		templates:    lieTemplates,
		replacements: lieReplacements,
	}
}

func (g *TemplateLieGenerator) GenerateLie(_ *Player) string {
	template := g.templates[g.rng.Intn(len(g.templates))]

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		options := g.replacements[key]
		if len(options) == 0 {
			return match
		}
		return options[g.rng.Intn(len(options))]
	})
}

var lieTemplates = []string{
	// Personal achievements
	"I once won a local competition for {skill}",
	"I hold the record for {achievement} in my hometown",
	"I was featured in a newspaper for {accomplishment}",
	"I received an award for {talent} when I was younger",

	// Unusual experiences
	"I once got trapped in {location} for {duration}",
	"I accidentally {action} at {event}",
	"I once met {person} at {place}",
	"I survived {situation} during {timeframe}",

	// Hidden talents
	"I can {skill} while {activity}",
	"I taught myself to {ability} in just {timeframe}",
	"I'm secretly really good at {talent}",
	"I once performed {performance} in front of {audience}",

	// Funny mishaps
	"I once confused {thing1} for {thing2} and {consequence}",
	"I got lost in {place} and ended up {outcome}",

	// Unique jobs
	"I worked as a {job} for {duration}",
	"I was once hired to {task} for {client}",

	// Food and cooking
	"I once cooked {dish} for {number} people",
	"I won a cooking contest with my {dish}",
	"I can make {food} from memory without a recipe",

	// Travel
	"I got stranded in {location} and had to {solution}",
	"I discovered {discovery} while visiting {place}",

	// Animals
	"I once rescued a {animal} from {situation}",
	"I taught my pet {animal} to {trick}",
	"I was chased by a {animal} while {activity}",

	// Technology
	"I built a {gadget} that can {function}",
	"I once fixed my {device} using only {materials}",

	// School
	"I once gave a presentation about {topic} to {audience}",
	"I taught {subject} to {students} for {duration}",
}

var lieReplacements = map[string][]string{
	"skill": {
		"solving Rubik's cubes blindfolded", "speed reading", "juggling", "whistling loudly",
		"identifying dog breeds", "folding origami", "beatboxing", "mental math",
	},
	"achievement": {
		"most pizza slices eaten in one sitting", "longest continuous yodel", "fastest shoe tying",
		"most accurate weather predictions", "cleanest handwriting", "best animal impressions",
	},
	"accomplishment": {
		"organizing a neighborhood cleanup", "starting a book club", "teaching elderly people technology",
		"creating a community garden", "tutoring struggling students",
	},
	"talent": {
		"creative writing", "photography", "singing", "drawing", "storytelling",
		"public speaking", "making people laugh", "remembering names",
	},
	"location": {
		"an elevator", "a library after hours", "a department store", "a parking garage",
		"a museum", "an airport", "a hotel lobby",
	},
	"duration": {
		"3 hours", "an entire afternoon", "overnight", "half a day", "the whole evening",
	},
	"action": {
		"started a flash mob", "joined the wrong tour group", "ordered food in the wrong language",
		"sat in the wrong meeting", "got on the wrong bus", "answered someone else's phone",
	},
	"event": {
		"a wedding", "a business conference", "a graduation ceremony", "a job interview",
		"a family reunion", "a school play",
	},
	"person": {
		"a minor celebrity", "a local news anchor", "a professional athlete", "a famous chef",
		"a bestselling author", "a TV show host",
	},
	"place": {
		"a coffee shop", "an airport", "a bookstore", "a grocery store", "a park",
		"a gym", "a train station",
	},
	"situation": {
		"a sudden thunderstorm", "getting locked out", "a power outage", "a cancelled flight",
		"a broken elevator", "a fire drill",
	},
	"timeframe": {
		"last summer", "during college", "as a teenager", "a few years ago", "during high school",
	},
	"ability": {
		"play the ukulele", "speak basic sign language", "identify constellations",
		"make balloon animals", "estimate distances accurately",
	},
	"performance": {
		"karaoke", "stand-up comedy", "a magic show", "a dance routine", "a poetry reading",
	},
	"audience": {
		"100+ people", "my entire school", "a packed auditorium", "a room full of strangers",
		"a professional conference",
	},
	"thing1": {
		"salt", "my keys", "my phone", "the remote", "my wallet",
	},
	"thing2": {
		"sugar", "someone else's keys", "someone else's phone", "a calculator",
		"someone else's wallet",
	},
	"consequence": {
		"hilarity ensued", "caused a minor disaster", "made everyone laugh",
		"created an awkward situation",
	},
	"outcome": {
		"finding the best restaurant in town", "meeting my future best friend",
		"discovering a hidden talent", "having the adventure of a lifetime",
	},
	"job": {
		"professional food taster", "mystery shopper", "costume character",
		"pet sitter", "event photographer",
	},
	"task": {
		"organize their closet", "teach their dog tricks", "plan their vacation",
		"design their garden", "plan their wedding",
	},
	"client": {
		"a busy executive", "a celebrity", "a local business", "my neighbor",
		"a nonprofit organization",
	},
	"dish": {
		"lasagna", "birthday cake", "thanksgiving dinner", "pizza", "barbecue", "stir-fry",
	},
	"food": {
		"chocolate chip cookies", "pancakes", "bread", "pizza dough", "pasta sauce",
	},
	"number": {
		"50", "100", "200", "nearly 200", "close to 300",
	},
	"discovery": {
		"a hidden café", "a beautiful viewpoint", "a local tradition",
		"an amazing street performer", "a secret garden",
	},
	"solution": {
		"hitchhike", "walk for miles", "sleep in the airport",
		"find a local who helped me",
	},
	"animal": {
		"cat", "dog", "bird", "squirrel", "rabbit", "turtle",
	},
	"trick": {
		"shake hands", "play dead", "fetch specific items", "respond to hand signals",
	},
	"activity": {
		"hiking", "jogging", "walking my dog", "riding my bike", "having a picnic",
	},
	"device": {
		"computer", "phone", "tablet", "camera", "microwave",
	},
	"gadget": {
		"phone holder", "desk organizer", "plant watering system", "kitchen timer",
	},
	"function": {
		"remind me of appointments", "track my habits", "make my life easier", "save me time",
	},
	"materials": {
		"paperclips and rubber bands", "duct tape", "things I found in my junk drawer",
	},
	"topic": {
		"the history of pizza", "why cats purr", "unusual animal facts",
		"the art of procrastination",
	},
	"subject": {
		"math", "history", "science", "art", "computer skills",
	},
	"students": {
		"elementary kids", "teenagers", "senior citizens", "neighborhood kids",
	},
}
