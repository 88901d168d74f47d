package ideology

// references is the ordered list of ideology points. Order matters: on equal
// distance the earlier entry wins.
var references = []Point{
	{Name: "Anarcho-Communism", Econ: 100, Dipl: 50, Govt: 100, Scty: 90},
	{Name: "Libertarian Communism", Econ: 100, Dipl: 70, Govt: 80, Scty: 80},
	{Name: "Trotskyism", Econ: 100, Dipl: 100, Govt: 60, Scty: 80},
	{Name: "Marxism", Econ: 100, Dipl: 70, Govt: 40, Scty: 80},
	{Name: "De Leonism", Econ: 100, Dipl: 30, Govt: 30, Scty: 80},
	{Name: "Leninism", Econ: 100, Dipl: 40, Govt: 20, Scty: 70},
	{Name: "Stalinism/Maoism", Econ: 100, Dipl: 20, Govt: 0, Scty: 60},
	{Name: "Religious Communism", Econ: 100, Dipl: 50, Govt: 30, Scty: 30},
	{Name: "State Socialism", Econ: 80, Dipl: 30, Govt: 30, Scty: 70},
	{Name: "Theocratic Socialism", Econ: 80, Dipl: 50, Govt: 30, Scty: 20},
	{Name: "Religious Socialism", Econ: 80, Dipl: 50, Govt: 70, Scty: 20},
	{Name: "Democratic Socialism", Econ: 80, Dipl: 50, Govt: 50, Scty: 80},
	{Name: "Revolutionary Socialism", Econ: 80, Dipl: 20, Govt: 50, Scty: 70},
	{Name: "Libertarian Socialism", Econ: 80, Dipl: 80, Govt: 80, Scty: 80},
	{Name: "Anarcho-Syndicalism", Econ: 80, Dipl: 50, Govt: 100, Scty: 80},
	{Name: "Left-Wing Populism", Econ: 60, Dipl: 40, Govt: 30, Scty: 70},
	{Name: "Theocratic Distributism", Econ: 60, Dipl: 40, Govt: 30, Scty: 20},
	{Name: "Distributism", Econ: 60, Dipl: 50, Govt: 50, Scty: 20},
	{Name: "Social Liberalism", Econ: 60, Dipl: 60, Govt: 60, Scty: 80},
	{Name: "Christian Democracy", Econ: 60, Dipl: 60, Govt: 50, Scty: 30},
	{Name: "Social Democracy", Econ: 60, Dipl: 70, Govt: 40, Scty: 80},
	{Name: "Progressivism", Econ: 60, Dipl: 80, Govt: 60, Scty: 100},
	{Name: "Anarcho-Mutualism", Econ: 60, Dipl: 50, Govt: 100, Scty: 70},
	{Name: "National Totalitarianism", Econ: 50, Dipl: 20, Govt: 0, Scty: 50},
	{Name: "Global Totalitarianism", Econ: 50, Dipl: 80, Govt: 0, Scty: 50},
	{Name: "Technocracy", Econ: 60, Dipl: 60, Govt: 20, Scty: 70},
	{Name: "Centrist", Econ: 50, Dipl: 50, Govt: 50, Scty: 50},
	{Name: "Liberalism", Econ: 50, Dipl: 60, Govt: 60, Scty: 60},
	{Name: "Religious Anarchism", Econ: 50, Dipl: 50, Govt: 100, Scty: 20},
	{Name: "Right-Wing Populism", Econ: 40, Dipl: 30, Govt: 30, Scty: 30},
	{Name: "Moderate Conservatism", Econ: 40, Dipl: 40, Govt: 50, Scty: 30},
	{Name: "Reactionary", Econ: 40, Dipl: 40, Govt: 40, Scty: 10},
	{Name: "Social Libertarianism", Econ: 60, Dipl: 70, Govt: 80, Scty: 70},
	{Name: "Libertarianism", Econ: 40, Dipl: 60, Govt: 80, Scty: 60},
	{Name: "Anarcho-Egoism", Econ: 40, Dipl: 50, Govt: 100, Scty: 50},
	{Name: "Nazism", Econ: 40, Dipl: 0, Govt: 0, Scty: 5},
	{Name: "Autocracy", Econ: 50, Dipl: 20, Govt: 20, Scty: 50},
	{Name: "Fascism", Econ: 40, Dipl: 20, Govt: 20, Scty: 20},
	{Name: "Capitalist Fascism", Econ: 20, Dipl: 20, Govt: 20, Scty: 20},
	{Name: "Conservatism", Econ: 30, Dipl: 40, Govt: 40, Scty: 20},
	{Name: "Neo-Liberalism", Econ: 30, Dipl: 30, Govt: 50, Scty: 60},
	{Name: "Classical Liberalism", Econ: 30, Dipl: 60, Govt: 60, Scty: 80},
	{Name: "Authoritarian Capitalism", Econ: 20, Dipl: 30, Govt: 20, Scty: 40},
	{Name: "State Capitalism", Econ: 20, Dipl: 50, Govt: 30, Scty: 50},
	{Name: "Neo-Conservatism", Econ: 20, Dipl: 20, Govt: 40, Scty: 20},
	{Name: "Fundamentalism", Econ: 20, Dipl: 30, Govt: 30, Scty: 5},
	{Name: "Libertarian Capitalism", Econ: 20, Dipl: 50, Govt: 80, Scty: 60},
	{Name: "Market Anarchism", Econ: 20, Dipl: 50, Govt: 100, Scty: 50},
	{Name: "Objectivism", Econ: 10, Dipl: 50, Govt: 90, Scty: 40},
	{Name: "Totalitarian Capitalism", Econ: 0, Dipl: 30, Govt: 0, Scty: 50},
	{Name: "Ultra-Capitalism", Econ: 0, Dipl: 40, Govt: 50, Scty: 50},
	{Name: "Anarcho-Capitalism", Econ: 0, Dipl: 50, Govt: 100, Scty: 50},
}
