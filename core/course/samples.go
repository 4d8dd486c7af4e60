package course

// Samples is the catalog seeded into an empty database.
var Samples = []NewCourse{
	{
		Title:       "Full-Stack Web Development",
		Slug:        "full-stack-web-development",
		Description: "Learn REST APIs, databases, and React: a practical guide for modern web development.",
		Category:    "Web Development",
		Level:       "Intermediate",
		Tags:        []string{"web", "react", "node", "postgres"},
	},
	{
		Title:       "Cloud Fundamentals for IT",
		Slug:        "cloud-fundamentals-it",
		Description: "Core cloud concepts and hands-on basics for working with cloud platforms.",
		Category:    "Cloud",
		Level:       "Beginner",
		Tags:        []string{"cloud", "aws", "gcp", "azure"},
	},
	{
		Title:       "Data Structures and Algorithms",
		Slug:        "data-structures-algorithms",
		Description: "Essential data structures and algorithmic techniques for software engineers.",
		Category:    "Computer Science",
		Level:       "Intermediate",
		Tags:        []string{"algorithms", "cs"},
	},
	{
		Title:       "DevOps Basics",
		Slug:        "devops-basics",
		Description: "CI/CD, containers, and automation fundamentals for teams shipping reliable software.",
		Category:    "DevOps",
		Level:       "Beginner",
		Tags:        []string{"devops", "docker", "ci"},
	},
	{
		Title:       "Full-Stack Web Development v2",
		Slug:        "full-stack-web-development-v2",
		Description: "Learn REST APIs, databases, and React: a practical guide for modern web development.",
		Category:    "Web Development",
		Level:       "Intermediate",
		Tags:        []string{"web", "react", "node", "postgres"},
	},
	{
		Title:       "Cybersecurity Essentials",
		Slug:        "cybersecurity-essentials",
		Description: "Fundamentals of security, threat modeling, and defensive controls for modern systems.",
		Category:    "Security",
		Level:       "Beginner",
		Tags:        []string{"security", "cybersecurity", "network"},
	},
	{
		Title:       "Machine Learning Engineering",
		Slug:        "machine-learning-engineering",
		Description: "Productionizing ML models, feature engineering, and model deployment practices.",
		Category:    "AI/ML",
		Level:       "Advanced",
		Tags:        []string{"ml", "mlops", "deployment"},
	},
	{
		Title:       "Data Engineering with Spark",
		Slug:        "data-engineering-spark",
		Description: "Building ETL pipelines, streaming, and batch processing with Apache Spark.",
		Category:    "Data Engineering",
		Level:       "Intermediate",
		Tags:        []string{"data", "spark", "etl"},
	},
	{
		Title:       "Kubernetes for Developers",
		Slug:        "kubernetes-for-developers",
		Description: "Container orchestration patterns, pod design, services, and deployments on Kubernetes.",
		Category:    "Cloud",
		Level:       "Intermediate",
		Tags:        []string{"kubernetes", "containers", "cloud"},
	},
	{
		Title:       "Site Reliability Engineering (SRE) Basics",
		Slug:        "sre-basics",
		Description: "SLOs, monitoring, incident response, and reliability culture for scalable systems.",
		Category:    "DevOps",
		Level:       "Intermediate",
		Tags:        []string{"sre", "monitoring", "reliability"},
	},
}
