package roles

// Team groups roles by win condition.
type Team string

const (
	Werewolves Team = "werewolves"
	Villagers  Team = "villagers"
	Neutral    Team = "neutral" // game master only
)

// Role ids referenced by the assignment rules.
const (
	LoupGarouUltime = "loup-garou-ultime"
	InfectLoup      = "infect-loup"
	GrandLoup       = "grand-loup"
	PetiteFille     = "petite-fille"
	Renard          = "renard"
	LoupBlanc       = "loup-blanc"
	Cupidon         = "cupidon"
	Voyante         = "voyante"
	Chevalier       = "chevalier"
	Chasseur        = "chasseur"
	Flutiste        = "flutiste"
	Sorciere        = "sorciere"
	Ancien          = "ancien"
	EnfantSauvage   = "enfant-sauvage"
	Ange            = "ange"

	GameMasterID = "game-master"
)

// Role is one immutable catalog entry.
type Role struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Team  Team   `json:"team"`
	Image string `json:"image,omitempty"`
	Power string `json:"power,omitempty"`
	Info  string `json:"info,omitempty"`
}

func (r Role) IsWerewolf() bool { return r.Team == Werewolves }

// GameMaster labels the host in aggregate views. It never takes part in a deal.
var GameMaster = Role{ID: GameMasterID, Name: "Maître du Jeu", Team: Neutral}

var catalog = []Role{
	{
		ID:    LoupGarouUltime,
		Name:  "Loup Garou Ultime",
		Team:  Werewolves,
		Image: "loupgarou.webp",
		Power: "Chaque nuit (sauf la première), choisissez un joueur. Il meurt. Vous pouvez choisir de vous tuer vous-même : l'infect loup garou ou le grand loup jouera alors votre rôle. Vous prenez connaissance d'un rôle de villageois absent de la partie pour vous faire passer pour lui.",
		Info:  "Ciblez les personnages qui acquièrent de l'information (voyante, enfant sauvage, cupidon) et évitez de mordre l'ancien.",
	},
	{
		ID:    InfectLoup,
		Name:  "Infect Loup Garou",
		Team:  Werewolves,
		Image: "infectloup.webp",
		Power: "Chaque nuit, choisissez un joueur. Il est empoisonné et perd son pouvoir jusqu'au début de la nuit suivante. Vous prenez connaissance d'un rôle de villageois absent de la partie.",
		Info:  "Cupidon, la voyante, l'ancien ou le chevalier sont de bonnes cibles : leurs pouvoirs vous gêneront.",
	},
	{
		ID:    GrandLoup,
		Name:  "Grand Loup Garou",
		Team:  Werewolves,
		Image: "grandloup.webp",
		Power: "S'il reste plus de 5 joueurs en vie et que le loup garou ultime meurt, vous devenez le loup garou ultime. Vous prenez connaissance d'un rôle de villageois absent de la partie.",
		Info:  "Restez discret tant que le loup garou ultime est en vie.",
	},
	{
		ID:    PetiteFille,
		Name:  "Petite Fille",
		Team:  Villagers,
		Image: "petite-fille.webp",
		Power: "Lors de la première nuit, le maître du jeu vous montre un rôle de villageois puis désigne deux joueurs. L'un d'eux possède ce rôle.",
		Info:  "Votre pouvoir ne s'applique que lors de la première nuit. Partagez vite vos informations.",
	},
	{
		ID:    Renard,
		Name:  "Renard",
		Team:  Villagers,
		Image: "renard.webp",
		Power: "Lors de la première nuit, le maître du jeu vous montre un rôle de loup garou (sauf le loup garou ultime) puis désigne deux joueurs. L'un d'eux est ce loup garou.",
		Info:  "Votre pouvoir ne s'applique que lors de la première nuit. Partagez vite vos informations.",
	},
	{
		ID:    LoupBlanc,
		Name:  "Loup Blanc",
		Team:  Villagers,
		Image: "loup_blanc.webp",
		Power: "Lors de la première nuit, vous découvrez combien de loups garous sont placés côte à côte.",
		Info:  "Votre pouvoir ne s'applique que lors de la première nuit. Partagez vite vos informations.",
	},
	{
		ID:    Cupidon,
		Name:  "Cupidon",
		Team:  Villagers,
		Image: "cupidon.webp",
		Power: "Chaque nuit, vous apprenez combien de loups garous se trouvent parmi les deux joueurs vivants qui vous entourent (0, 1 ou 2).",
		Info:  "Vous serez probablement une cible du loup garou ultime. La discrétion est un atout.",
	},
	{
		ID:    Voyante,
		Name:  "Voyante",
		Team:  Villagers,
		Image: "voyante.webp",
		Power: "Chaque nuit, choisissez deux joueurs. Si l'un d'eux est le loup garou ultime, vous l'apprenez. Attention : un villageois est un leurre et vous apparaîtra comme le loup garou ultime.",
		Info:  "Vous serez probablement une cible du loup garou ultime. La discrétion est un atout.",
	},
	{
		ID:    Chevalier,
		Name:  "Chevalier",
		Team:  Villagers,
		Image: "chevalier.webp",
		Power: "Chaque nuit (sauf la première), choisissez un autre personnage : il est protégé du loup garou ultime pour la nuit.",
		Info:  "Protégez les personnages qui acquièrent de l'information ou ont un pouvoir unique (Cupidon, la voyante, le chasseur).",
	},
	{
		ID:    Chasseur,
		Name:  "Chasseur",
		Team:  Villagers,
		Image: "chasseur.webp",
		Power: "Une fois par partie, pendant la journée, désignez publiquement un joueur. Si c'est le loup garou ultime, il meurt.",
		Info:  "Utilisez votre pouvoir avant de mourir. En cas d'erreur, vous saurez que votre cible n'est pas le loup garou ultime.",
	},
	{
		ID:    Flutiste,
		Name:  "Joueur de flûte",
		Team:  Villagers,
		Image: "flute.webp",
		Power: "Pendant la journée, si un villageois vous désigne pour une exécution (sauf l'ange ou un joueur bourré), il est immédiatement exécuté. Ce pouvoir n'est utilisé qu'une fois.",
		Info:  "Ne dites rien lorsque cela arrive : le maître du jeu interviendra. Ce pouvoir vous protège des mauvaises accusations.",
	},
	{
		ID:    Sorciere,
		Name:  "Sorcière",
		Team:  Villagers,
		Image: "sorciere.webp",
		Power: "Si vous mourez la nuit, vous choisissez un personnage et découvrez son identité.",
		Info:  "Faites-vous passer pour un personnage informé afin d'attirer la morsure. Exécutée par le village, votre pouvoir ne se déclenche pas.",
	},
	{
		ID:    Ancien,
		Name:  "Ancien",
		Team:  Villagers,
		Image: "ancien.webp",
		Power: "Le loup garou ultime ne peut pas vous tuer.",
		Info:  "Faites-vous passer pour une proie de choix afin que le loup garou ultime gaspille sa morsure.",
	},
	{
		ID:    EnfantSauvage,
		Name:  "Enfant Sauvage",
		Team:  Villagers,
		Image: "enfant.webp",
		Power: "Si un joueur est exécuté par le village durant la journée, vous découvrez son identité la nuit suivante.",
		Info:  "Provoquez des nominations pour innocenter ou accuser quelqu'un.",
	},
	{
		ID:    Ange,
		Name:  "Ange",
		Team:  Villagers,
		Image: "ange.webp",
		Power: "Si le village vous élimine, le village perd la partie.",
		Info:  "Révéler votre rôle peut vous protéger des fausses accusations.",
	},
}

var byID = func() map[string]Role {
	m := make(map[string]Role, len(catalog))
	for _, r := range catalog {
		m[r.ID] = r
	}
	return m
}()

// All returns the catalog in its fixed order. The slice is a copy.
func All() []Role {
	return append([]Role(nil), catalog...)
}

// Get looks a role up by id.
func Get(id string) (Role, bool) {
	r, ok := byID[id]
	return r, ok
}

// MustGet is Get for ids known at compile time.
func MustGet(id string) Role {
	r, ok := byID[id]
	if !ok {
		panic("roles: unknown role " + id)
	}
	return r
}

// ByTeam returns the catalog entries of one team, in catalog order.
func ByTeam(t Team) []Role {
	var out []Role
	for _, r := range catalog {
		if r.Team == t {
			out = append(out, r)
		}
	}
	return out
}
