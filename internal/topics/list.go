package topics

var prompts = []string{
	"What is a policy you changed your mind about, and what changed it?",
	"If you could redesign one public institution from scratch, which would it be?",
	"Which book shaped the way you see the world?",
	"What does a fair economy look like to you?",
	"Should voting be compulsory? Why or why not?",
	"What is a hobby you picked up recently?",
	"Which historical figure would you most like to debate?",
	"Is there a local issue in your city you care a lot about?",
	"What is the most underrated right people have?",
	"How much should a government know about its citizens?",
	"What would you do with a universal basic income?",
	"Which country's political system do you find most interesting?",
	"What is a tradition you would keep no matter what?",
	"What is a tradition you would happily get rid of?",
	"How do you usually spend a free Sunday?",
	"What is a cause you would volunteer a weekend for?",
	"Should cities be built around cars, bikes or public transport?",
	"What is the best argument you have heard against your own views?",
	"Which technology do you think will change politics the most?",
	"What is something you are proud to have learned on your own?",
	"Where do you draw the line between free speech and harm?",
	"If you ran for office, what would your first bill be?",
	"Which documentary or podcast would you recommend to anyone?",
	"What is your favourite way to disagree with someone productively?",
	"Should national borders matter less in the future?",
	"What is a small everyday thing that makes you happy?",
	"What does community mean to you?",
	"Which hobby would you like to get someone else into?",
	"What role should religion play in public life?",
	"What is a place you have travelled to that changed your perspective?",
}
